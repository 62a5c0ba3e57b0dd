package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebill/internal/models"
)

func taskEntry(id string, minutes int, taskName string, subtask *string) *models.TimeEntry {
	e := &models.TimeEntry{ID: id, DurationMinutes: minutes, IsBillable: true, Subtask: subtask}
	if taskName != "" {
		e.Task = &models.Task{ID: "t-" + taskName, Name: taskName}
	}
	return e
}

func strPtr(s string) *string { return &s }

func janPeriod() Range {
	return Range{
		Start: date(2025, time.January, 1),
		End:   date(2025, time.January, 31),
	}
}

func TestSubtotalHourly(t *testing.T) {
	customer := hourlyCustomer("c1", 100)
	entries := []*models.TimeEntry{
		taskEntry("e1", 90, "Website", nil),
		taskEntry("e2", 30, "Website", nil),
	}
	assert.Equal(t, 200.0, Subtotal(customer, entries))
}

func TestSubtotalMonthlyIgnoresHours(t *testing.T) {
	customer := monthlyCustomer("c1", 1500)
	entries := []*models.TimeEntry{
		taskEntry("e1", 6000, "Anything", nil),
	}
	assert.Equal(t, 1500.0, Subtotal(customer, entries))
}

func TestBuildLineItemsHourlyTaskLevel(t *testing.T) {
	customer := hourlyCustomer("c1", 100)
	entries := []*models.TimeEntry{
		taskEntry("e1", 90, "Website", nil),
		taskEntry("e2", 30, "Website", nil),
		taskEntry("e3", 60, "Support", nil),
	}

	items := BuildLineItems(customer, entries, models.DetailLevelTask, janPeriod())
	require.Len(t, items, 2)

	assert.Equal(t, "Website\nTotal: 2.00 hours", items[0].Description)
	assert.Equal(t, 2.0, items[0].Quantity)
	assert.Equal(t, 100.0, items[0].Rate)
	assert.Equal(t, 200.0, items[0].Amount)
	assert.Equal(t, []string{"e1", "e2"}, items[0].TimeEntryIDs)

	assert.Equal(t, "Support\nTotal: 1.00 hours", items[1].Description)
	assert.Equal(t, 100.0, items[1].Amount)
}

func TestBuildLineItemsHourlySubtaskLevel(t *testing.T) {
	customer := hourlyCustomer("c1", 100)
	entries := []*models.TimeEntry{
		taskEntry("e1", 60, "Website", strPtr("Frontend")),
		taskEntry("e2", 30, "Website", strPtr("Backend")),
		taskEntry("e3", 30, "Website", nil),
	}

	items := BuildLineItems(customer, entries, models.DetailLevelSubtask, janPeriod())
	require.Len(t, items, 1)

	want := "Website" +
		"\nSubtasks:" +
		"\n  • Frontend: 1.00 hours" +
		"\n  • Backend: 0.50 hours" +
		"\n  • General work: 0.50 hours" +
		"\nTotal: 2.00 hours"
	assert.Equal(t, want, items[0].Description)
	assert.Equal(t, 2.0, items[0].Quantity)
	assert.Equal(t, 200.0, items[0].Amount)
}

func TestBuildLineItemsTaskNameFallbacks(t *testing.T) {
	customer := hourlyCustomer("c1", 50)
	described := &models.TimeEntry{ID: "e1", DurationMinutes: 60, IsBillable: true, TaskDescription: "Ad-hoc call"}
	bare := &models.TimeEntry{ID: "e2", DurationMinutes: 60, IsBillable: true}

	items := BuildLineItems(customer, []*models.TimeEntry{described, bare}, models.DetailLevelTask, janPeriod())
	require.Len(t, items, 2)
	assert.Contains(t, items[0].Description, "Ad-hoc call")
	assert.Contains(t, items[1].Description, "General Work")
}

func TestBuildLineItemsMonthlySingleLine(t *testing.T) {
	customer := monthlyCustomer("c1", 1500)
	entries := []*models.TimeEntry{
		taskEntry("e1", 90, "Website", nil),
		taskEntry("e2", 30, "Support", nil),
		taskEntry("e3", 60, "Support", nil),
	}

	items := BuildLineItems(customer, entries, models.DetailLevelTask, janPeriod())
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 1.0, item.Quantity)
	assert.Equal(t, 1500.0, item.Rate)
	assert.Equal(t, 1500.0, item.Amount)
	assert.ElementsMatch(t, []string{"e1", "e2", "e3"}, item.TimeEntryIDs)

	want := "Monthly Service - Jan 1, 2025 to Jan 31, 2025" +
		"\n\nTasks completed:" +
		"\n  • Website: 1.50 hours" +
		"\n  • Support: 1.50 hours" +
		"\n\nTotal hours logged: 3.00"
	assert.Equal(t, want, item.Description)
}

func TestBuildLineItemsMonthlySubtaskLevel(t *testing.T) {
	customer := monthlyCustomer("c1", 2000)
	entries := []*models.TimeEntry{
		taskEntry("e1", 60, "Website", strPtr("Frontend")),
		taskEntry("e2", 60, "Website", nil),
	}

	items := BuildLineItems(customer, entries, models.DetailLevelSubtask, janPeriod())
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Description, "\n\n  Website: 2.00 hours")
	assert.Contains(t, items[0].Description, "\n    - Frontend: 1.00 hours")
	assert.Contains(t, items[0].Description, "\n    - General work: 1.00 hours")
	assert.Equal(t, 2000.0, items[0].Amount)
}

func TestInvoiceNotes(t *testing.T) {
	notes := InvoiceNotes(janPeriod())
	assert.Equal(t, "Invoice for services rendered during Jan 1, 2025 to Jan 31, 2025", notes)
}

func TestDueDate(t *testing.T) {
	invoiceDate := date(2025, time.June, 1)

	withTerms := hourlyCustomer("c1", 100)
	withTerms.PaymentTerms = 30
	assert.Equal(t, date(2025, time.July, 1), DueDate(invoiceDate, withTerms))

	// Zero payment terms fall back to 14 days.
	noTerms := hourlyCustomer("c2", 100)
	assert.Equal(t, date(2025, time.June, 15), DueDate(invoiceDate, noTerms))
}
