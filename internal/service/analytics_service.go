package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"timebill/internal/billing"
	"timebill/internal/models"
)

type analyticsEntryStore interface {
	ListRange(userID string, start, end *time.Time) ([]*models.TimeEntry, error)
}

type expenseLister interface {
	ListInRange(userID string, start, end time.Time) ([]*models.Expense, error)
}

type AnalyticsService struct {
	entries         analyticsEntryStore
	expenses        expenseLister
	profiles        profileGetter
	defaultCurrency string
	logger          *zap.Logger
}

func NewAnalyticsService(entries analyticsEntryStore, expenses expenseLister, profiles profileGetter, defaultCurrency string, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		entries:         entries,
		expenses:        expenses,
		profiles:        profiles,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// clientAgg accumulates one client's unrounded figures during the sweep.
type clientAgg struct {
	name       string
	hours      float64
	revenue    float64
	expenses   float64
	kilometers float64
}

// bucketAgg accumulates one series slot.
type bucketAgg struct {
	billable    float64
	nonBillable float64
	revenue     float64
	costs       float64
	expenses    float64
}

// Report computes the full metrics payload for the period in a single pass
// over the period's time entries. Rounding happens only at assembly; all
// accumulation runs on raw values.
func (s *AnalyticsService) Report(userID string, period models.TimePeriod, customStart, customEnd *time.Time) (*models.AnalyticsReport, error) {
	current, previous, err := billing.ResolvePeriod(period, time.Now(), customStart, customEnd)
	if err != nil {
		return nil, NewValidationError("period", err.Error())
	}
	grouping := billing.GroupingFor(period, current)

	entries, err := s.entries.ListRange(userID, &current.Start, &current.End)
	if err != nil {
		return nil, NewStoreError("list time entries", err)
	}
	prevEntries, err := s.entries.ListRange(userID, &previous.Start, &previous.End)
	if err != nil {
		return nil, NewStoreError("list previous time entries", err)
	}

	profile, err := s.profiles.GetOrDefault(userID, s.defaultCurrency)
	if err != nil {
		return nil, NewStoreError("get profile", err)
	}

	// Expenses are a secondary input; a failed read degrades the report to
	// zero expenses rather than failing it.
	expenses, err := s.expenses.ListInRange(userID, current.Start, current.End)
	if err != nil {
		s.logger.Warn("Expense lookup failed, reporting without expenses",
			zap.Error(err), zap.String("user_id", userID))
		expenses = nil
	}

	var (
		totalHours       float64
		billableHours    float64
		nonBillableHours float64
		internalHours    float64
		revenue          float64
		totalKilometers  float64
	)

	tracker := billing.NewRevenueTracker()
	clients := make(map[string]*clientAgg)
	buckets := make(map[string]*bucketAgg)
	for _, b := range billing.Buckets(period, current, grouping) {
		buckets[b.Key] = &bucketAgg{}
	}

	for _, entry := range entries {
		hours := entry.Hours()
		customer := entry.Customer
		internal := customer != nil && customer.IsInternal

		totalHours += hours
		switch {
		case internal:
			internalHours += hours
			nonBillableHours += hours
		case entry.IsBillable:
			billableHours += hours
		default:
			nonBillableHours += hours
		}

		entryRevenue := tracker.EntryRevenue(entry, customer)
		revenue += entryRevenue

		var kilometers float64
		if entry.DriveRequired && entry.Kilometers != nil {
			kilometers = *entry.Kilometers
		}
		totalKilometers += kilometers

		if customer != nil && !internal {
			agg, ok := clients[customer.ID]
			if !ok {
				agg = &clientAgg{name: customer.CompanyName}
				clients[customer.ID] = agg
			}
			agg.hours += hours
			agg.revenue += entryRevenue
			agg.kilometers += kilometers
		}

		if bucket, ok := buckets[billing.BucketKey(entry.StartTime, grouping)]; ok {
			if entry.IsBillable && !internal {
				bucket.billable += hours
			} else {
				bucket.nonBillable += hours
			}
			bucket.revenue += entryRevenue
			bucket.costs += hours * profile.InternalHourlyRate
		}
	}

	var totalExpenses, monthlyExpenses, oneOffExpenses float64
	for _, expense := range expenses {
		totalExpenses += expense.Amount
		if expense.ExpenseType == models.ExpenseTypeMonthly {
			monthlyExpenses += expense.Amount
		} else {
			oneOffExpenses += expense.Amount
		}

		if expense.CustomerID != nil {
			if agg, ok := clients[*expense.CustomerID]; ok {
				agg.expenses += expense.Amount
			}
		}
		if bucket, ok := buckets[billing.BucketKey(expense.Date, grouping)]; ok {
			bucket.expenses += expense.Amount
		}
	}

	costs := totalHours * profile.InternalHourlyRate
	ebitda := revenue - costs - totalExpenses
	var ebitdaMargin float64
	if revenue > 0 {
		ebitdaMargin = ebitda / revenue * 100
	}

	prevTracker := billing.NewRevenueTracker()
	var prevRevenue float64
	for _, entry := range prevEntries {
		prevRevenue += prevTracker.EntryRevenue(entry, entry.Customer)
	}

	report := &models.AnalyticsReport{
		TotalHours:       billing.Round2(totalHours),
		BillableHours:    billing.Round2(billableHours),
		NonBillableHours: billing.Round2(nonBillableHours),
		InternalHours:    billing.Round2(internalHours),
		Revenue:          billing.Round2(revenue),
		Costs:            billing.Round2(costs),
		Expenses:         billing.Round2(totalExpenses),
		MonthlyExpenses:  billing.Round2(monthlyExpenses),
		OneOffExpenses:   billing.Round2(oneOffExpenses),
		EBITDA:           billing.Round2(ebitda),
		EBITDAMargin:     billing.Round2(ebitdaMargin),
		ActiveClients:    len(clients),
		TotalKilometers:  billing.Round1(totalKilometers),
		HoursPerClient:   clientRows(clients, profile.InternalHourlyRate),
		TimeSeries:       seriesRows(period, current, grouping, buckets),
		Grouping:         string(grouping),
		RevenueTrend:     revenueTrend(revenue, prevRevenue),
	}
	return report, nil
}

// clientRows assembles the per-client profitability table, busiest clients
// first.
func clientRows(clients map[string]*clientAgg, internalRate float64) []models.ClientMetrics {
	rows := make([]models.ClientMetrics, 0, len(clients))
	for _, agg := range clients {
		clientCosts := agg.hours * internalRate
		profit := agg.revenue - clientCosts - agg.expenses
		var margin float64
		if agg.revenue > 0 {
			margin = profit / agg.revenue * 100
		}
		rows = append(rows, models.ClientMetrics{
			Name:         agg.name,
			Hours:        billing.Round2(agg.hours),
			Revenue:      billing.Round2(agg.revenue),
			Costs:        billing.Round2(clientCosts),
			Expenses:     billing.Round2(agg.expenses),
			Profit:       billing.Round2(profit),
			ProfitMargin: billing.Round2(margin),
			Kilometers:   billing.Round1(agg.kilometers),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Hours != rows[j].Hours {
			return rows[i].Hours > rows[j].Hours
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// seriesRows walks the pre-built bucket skeleton in calendar order so the
// series is complete and zero-filled.
func seriesRows(period models.TimePeriod, r billing.Range, grouping billing.Grouping, buckets map[string]*bucketAgg) []models.TimeBucket {
	skeleton := billing.Buckets(period, r, grouping)
	series := make([]models.TimeBucket, 0, len(skeleton))
	for _, b := range skeleton {
		agg := buckets[b.Key]
		profit := agg.revenue - agg.costs - agg.expenses
		series = append(series, models.TimeBucket{
			Label:       b.Label,
			Date:        b.Date,
			Billable:    billing.Round2(agg.billable),
			NonBillable: billing.Round2(agg.nonBillable),
			Revenue:     billing.Round2(agg.revenue),
			Costs:       billing.Round2(agg.costs),
			Expenses:    billing.Round2(agg.expenses),
			Profit:      billing.Round2(profit),
		})
	}
	return series
}

func revenueTrend(current, previous float64) models.RevenueTrend {
	change := current - previous
	var changePercent float64
	switch {
	case previous != 0:
		changePercent = change / previous * 100
	case current > 0:
		changePercent = 100
	}
	return models.RevenueTrend{
		Current:       billing.Round2(current),
		Previous:      billing.Round2(previous),
		Change:        billing.Round2(change),
		ChangePercent: billing.Round2(changePercent),
	}
}

// ExportCSV renders the per-client profitability table as CSV.
func (s *AnalyticsService) ExportCSV(userID string, period models.TimePeriod, customStart, customEnd *time.Time) ([]byte, error) {
	report, err := s.Report(userID, period, customStart, customEnd)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Client", "Hours", "Revenue", "Costs", "Profit", "Profit Margin", "Transport (km)"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range report.HoursPerClient {
		record := []string{
			row.Name,
			strconv.FormatFloat(row.Hours, 'f', 2, 64),
			strconv.FormatFloat(row.Revenue, 'f', 2, 64),
			strconv.FormatFloat(row.Costs, 'f', 2, 64),
			strconv.FormatFloat(row.Profit, 'f', 2, 64),
			strconv.FormatFloat(row.ProfitMargin, 'f', 2, 64) + "%",
			strconv.FormatFloat(row.Kilometers, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
