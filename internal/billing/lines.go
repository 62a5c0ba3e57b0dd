package billing

import (
	"fmt"
	"strings"
	"time"

	"timebill/internal/models"
)

// fallbackTaskName groups entries that have neither a task nor a free-text
// description.
const fallbackTaskName = "General Work"

// LineItemDraft is a computed line item before it is written to the store.
type LineItemDraft struct {
	Description  string
	Quantity     float64
	Rate         float64
	Amount       float64
	TimeEntryIDs []string
}

// Subtotal computes the invoice subtotal for the selected entries: hours x
// rate for hourly customers, the flat rate for monthly customers regardless
// of hours.
func Subtotal(customer *models.Customer, entries []*models.TimeEntry) float64 {
	if customer.RateType == models.RateTypeMonthly {
		return customer.DefaultRate
	}
	var total float64
	for _, entry := range entries {
		total += entry.Hours() * customer.DefaultRate
	}
	return total
}

// BuildLineItems drafts the invoice line items. Hourly customers get one line
// per task group; monthly customers always get exactly one line covering the
// whole period, with the task/subtask breakdown as descriptive text and the
// flat rate as the amount.
func BuildLineItems(customer *models.Customer, entries []*models.TimeEntry, level models.DetailLevel, period Range) []LineItemDraft {
	if customer.RateType == models.RateTypeMonthly {
		return []LineItemDraft{monthlyLineItem(customer, entries, level, period)}
	}

	groups := groupByTask(entries)
	items := make([]LineItemDraft, 0, len(groups))
	for _, group := range groups {
		hours := totalHours(group.entries)
		amount := hours * customer.DefaultRate

		var description string
		if level == models.DetailLevelSubtask {
			description = group.name + subtaskBreakdown(group.entries, "  ") +
				fmt.Sprintf("\nTotal: %.2f hours", hours)
		} else {
			description = fmt.Sprintf("%s\nTotal: %.2f hours", group.name, hours)
		}

		items = append(items, LineItemDraft{
			Description:  description,
			Quantity:     hours,
			Rate:         customer.DefaultRate,
			Amount:       amount,
			TimeEntryIDs: entryIDs(group.entries),
		})
	}
	return items
}

func monthlyLineItem(customer *models.Customer, entries []*models.TimeEntry, level models.DetailLevel, period Range) LineItemDraft {
	var b strings.Builder
	fmt.Fprintf(&b, "Monthly Service - %s to %s",
		period.Start.Format("Jan 2, 2006"), period.End.Format("Jan 2, 2006"))
	b.WriteString("\n\nTasks completed:")

	for _, group := range groupByTask(entries) {
		hours := totalHours(group.entries)
		if level == models.DetailLevelSubtask {
			fmt.Fprintf(&b, "\n\n  %s: %.2f hours", group.name, hours)
			b.WriteString(subtaskBreakdownLines(group.entries, "    - "))
		} else {
			fmt.Fprintf(&b, "\n  • %s: %.2f hours", group.name, hours)
		}
	}
	fmt.Fprintf(&b, "\n\nTotal hours logged: %.2f", totalHours(entries))

	return LineItemDraft{
		Description:  b.String(),
		Quantity:     1,
		Rate:         customer.DefaultRate,
		Amount:       customer.DefaultRate,
		TimeEntryIDs: entryIDs(entries),
	}
}

// subtaskBreakdown renders the per-subtask hours for an hourly line item,
// with a remainder bucket for entries carrying no subtask.
func subtaskBreakdown(entries []*models.TimeEntry, indent string) string {
	withSubtask, without := splitBySubtask(entries)

	var b strings.Builder
	if len(withSubtask) > 0 {
		b.WriteString("\nSubtasks:")
		for _, group := range groupBySubtask(withSubtask) {
			fmt.Fprintf(&b, "\n%s• %s: %.2f hours", indent, group.name, totalHours(group.entries))
		}
	}
	if len(without) > 0 {
		if len(withSubtask) > 0 {
			fmt.Fprintf(&b, "\n%s• General work: %.2f hours", indent, totalHours(without))
		} else {
			fmt.Fprintf(&b, "\nGeneral work: %.2f hours", totalHours(without))
		}
	}
	return b.String()
}

// subtaskBreakdownLines renders the dash-prefixed breakdown used inside the
// monthly single-line description.
func subtaskBreakdownLines(entries []*models.TimeEntry, prefix string) string {
	withSubtask, without := splitBySubtask(entries)

	var b strings.Builder
	for _, group := range groupBySubtask(withSubtask) {
		fmt.Fprintf(&b, "\n%s%s: %.2f hours", prefix, group.name, totalHours(group.entries))
	}
	if len(without) > 0 {
		fmt.Fprintf(&b, "\n%sGeneral work: %.2f hours", prefix, totalHours(without))
	}
	return b.String()
}

// InvoiceNotes is the generated notes text for a new invoice.
func InvoiceNotes(period Range) string {
	return fmt.Sprintf("Invoice for services rendered during %s to %s",
		period.Start.Format("Jan 2, 2006"), period.End.Format("Jan 2, 2006"))
}

// DueDate applies the customer's payment terms to the invoice date.
func DueDate(invoiceDate time.Time, customer *models.Customer) time.Time {
	return invoiceDate.AddDate(0, 0, customer.PaymentTermsOrDefault())
}

type entryGroup struct {
	name    string
	entries []*models.TimeEntry
}

// groupByTask groups in first-appearance order so line items come out in a
// stable, selection-derived order.
func groupByTask(entries []*models.TimeEntry) []entryGroup {
	index := make(map[string]int)
	var groups []entryGroup
	for _, entry := range entries {
		name := taskName(entry)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, entryGroup{name: name})
		}
		groups[i].entries = append(groups[i].entries, entry)
	}
	return groups
}

func groupBySubtask(entries []*models.TimeEntry) []entryGroup {
	index := make(map[string]int)
	var groups []entryGroup
	for _, entry := range entries {
		name := *entry.Subtask
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, entryGroup{name: name})
		}
		groups[i].entries = append(groups[i].entries, entry)
	}
	return groups
}

func splitBySubtask(entries []*models.TimeEntry) (withSubtask, without []*models.TimeEntry) {
	for _, entry := range entries {
		if entry.Subtask != nil && *entry.Subtask != "" {
			withSubtask = append(withSubtask, entry)
		} else {
			without = append(without, entry)
		}
	}
	return withSubtask, without
}

func taskName(entry *models.TimeEntry) string {
	if entry.Task != nil && entry.Task.Name != "" {
		return entry.Task.Name
	}
	if entry.TaskDescription != "" {
		return entry.TaskDescription
	}
	return fallbackTaskName
}

func totalHours(entries []*models.TimeEntry) float64 {
	var hours float64
	for _, entry := range entries {
		hours += entry.Hours()
	}
	return hours
}

func entryIDs(entries []*models.TimeEntry) []string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return ids
}
