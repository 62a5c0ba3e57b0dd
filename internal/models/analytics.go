package models

// TimePeriod selects the reporting window for analytics.
type TimePeriod string

const (
	PeriodWeek   TimePeriod = "week"
	PeriodMonth  TimePeriod = "month"
	PeriodYear   TimePeriod = "year"
	PeriodCustom TimePeriod = "custom"
)

// ClientMetrics is one row of the per-client profitability table.
type ClientMetrics struct {
	Name         string  `json:"name"`
	Hours        float64 `json:"hours"`
	Revenue      float64 `json:"revenue"`
	Costs        float64 `json:"costs"`
	Expenses     float64 `json:"expenses"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	Kilometers   float64 `json:"kilometers"`
}

// TimeBucket is one point of the zero-filled series: a day for week/month
// reports, a month for year reports.
type TimeBucket struct {
	Label       string  `json:"label"`
	Date        string  `json:"date"`
	Billable    float64 `json:"billable"`
	NonBillable float64 `json:"non_billable"`
	Revenue     float64 `json:"revenue"`
	Costs       float64 `json:"costs"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
}

type RevenueTrend struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// AnalyticsReport is the full metrics payload for one reporting period.
// Monetary and hour figures are rounded to 2 decimals, kilometers to 1,
// at report assembly only.
type AnalyticsReport struct {
	TotalHours       float64         `json:"total_hours"`
	BillableHours    float64         `json:"billable_hours"`
	NonBillableHours float64         `json:"non_billable_hours"`
	InternalHours    float64         `json:"internal_hours"`
	Revenue          float64         `json:"revenue"`
	Costs            float64         `json:"costs"`
	Expenses         float64         `json:"expenses"`
	MonthlyExpenses  float64         `json:"monthly_expenses"`
	OneOffExpenses   float64         `json:"one_off_expenses"`
	EBITDA           float64         `json:"ebitda"`
	EBITDAMargin     float64         `json:"ebitda_margin"`
	ActiveClients    int             `json:"active_clients"`
	TotalKilometers  float64         `json:"total_kilometers"`
	HoursPerClient   []ClientMetrics `json:"hours_per_client"`
	TimeSeries       []TimeBucket    `json:"time_series_data"`
	Grouping         string          `json:"grouping"`
	RevenueTrend     RevenueTrend    `json:"revenue_trend"`
}
