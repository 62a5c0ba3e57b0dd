package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timebill/internal/models"
)

func hourlyCustomer(id string, rate float64) *models.Customer {
	return &models.Customer{ID: id, CompanyName: "Acme", DefaultRate: rate, RateType: models.RateTypeHourly}
}

func monthlyCustomer(id string, rate float64) *models.Customer {
	return &models.Customer{ID: id, CompanyName: "Retainer Co", DefaultRate: rate, RateType: models.RateTypeMonthly}
}

func entry(minutes int, billable bool) *models.TimeEntry {
	return &models.TimeEntry{DurationMinutes: minutes, IsBillable: billable}
}

func TestEntryRevenueHourly(t *testing.T) {
	tracker := NewRevenueTracker()
	customer := hourlyCustomer("c1", 100)

	assert.Equal(t, 150.0, tracker.EntryRevenue(entry(90, true), customer))
	assert.Equal(t, 50.0, tracker.EntryRevenue(entry(30, true), customer))
}

func TestEntryRevenueMonthlyCountsOncePerPeriod(t *testing.T) {
	tracker := NewRevenueTracker()
	customer := monthlyCustomer("c1", 1500)

	assert.Equal(t, 1500.0, tracker.EntryRevenue(entry(60, true), customer))
	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(120, true), customer))
	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(45, true), customer))

	// A fresh tracker represents a new period, so the flat rate counts again.
	fresh := NewRevenueTracker()
	assert.Equal(t, 1500.0, fresh.EntryRevenue(entry(60, true), customer))
}

func TestEntryRevenueMonthlyPerCustomer(t *testing.T) {
	tracker := NewRevenueTracker()
	a := monthlyCustomer("a", 1000)
	b := monthlyCustomer("b", 2000)

	assert.Equal(t, 1000.0, tracker.EntryRevenue(entry(60, true), a))
	assert.Equal(t, 2000.0, tracker.EntryRevenue(entry(60, true), b))
	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(60, true), a))
}

func TestEntryRevenueExclusions(t *testing.T) {
	tracker := NewRevenueTracker()

	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(60, false), hourlyCustomer("c1", 100)), "non-billable")
	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(60, true), nil), "missing customer")

	internal := hourlyCustomer("c2", 100)
	internal.IsInternal = true
	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(60, true), internal), "internal customer")

	// An internal monthly customer must not burn the dedup slot either.
	internalMonthly := monthlyCustomer("c3", 500)
	internalMonthly.IsInternal = true
	assert.Equal(t, 0.0, tracker.EntryRevenue(entry(60, true), internalMonthly))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125))
	assert.Equal(t, 10.12, Round2(10.124))
	assert.Equal(t, -10.13, Round2(-10.125))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 12.5, Round1(12.45))
	assert.Equal(t, 12.4, Round1(12.44))
}
