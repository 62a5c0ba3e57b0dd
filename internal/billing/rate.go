package billing

import "timebill/internal/models"

// DefaultVATPercentage is the flat VAT applied to invoice subtotals.
const DefaultVATPercentage = 25.0

// RevenueTracker attributes revenue to time entries for a single reporting
// period. A monthly-rate customer contributes its flat rate at most once per
// tracker, so callers must create a fresh tracker per period — never share
// one between the current and comparison period.
type RevenueTracker struct {
	monthlyCounted map[string]struct{}
}

func NewRevenueTracker() *RevenueTracker {
	return &RevenueTracker{monthlyCounted: make(map[string]struct{})}
}

// EntryRevenue returns the revenue the entry contributes within this
// tracker's period. Non-billable entries and internal customers contribute
// nothing; hourly customers contribute hours x rate per entry; monthly
// customers contribute the flat rate once per customer.
func (t *RevenueTracker) EntryRevenue(entry *models.TimeEntry, customer *models.Customer) float64 {
	if customer == nil || !entry.IsBillable || customer.IsInternal {
		return 0
	}

	switch customer.RateType {
	case models.RateTypeHourly:
		return entry.Hours() * customer.DefaultRate
	case models.RateTypeMonthly:
		if _, counted := t.monthlyCounted[customer.ID]; counted {
			return 0
		}
		t.monthlyCounted[customer.ID] = struct{}{}
		return customer.DefaultRate
	default:
		return 0
	}
}

// Round2 rounds to 2 decimals. Applied at report boundaries only.
func Round2(v float64) float64 {
	return roundTo(v, 100)
}

// Round1 rounds to 1 decimal (kilometers).
func Round1(v float64) float64 {
	return roundTo(v, 10)
}

func roundTo(v float64, factor float64) float64 {
	if v < 0 {
		return -roundTo(-v, factor)
	}
	return float64(int64(v*factor+0.5)) / factor
}
