package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"

	// InvoiceStatusOverdue is derived at read time from the due date; it is
	// never written to the store.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

type Invoice struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	CustomerID    string        `json:"customer_id"`
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   time.Time     `json:"invoice_date"`
	DueDate       time.Time     `json:"due_date"`
	Status        InvoiceStatus `json:"status"`
	Subtotal      float64       `json:"subtotal"`
	VATPercentage float64       `json:"vat_percentage"`
	VATAmount     float64       `json:"vat_amount"`
	TotalAmount   float64       `json:"total_amount"`
	Notes         *string       `json:"notes,omitempty"`
	SentAt        *time.Time    `json:"sent_at,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Customer  *Customer         `json:"customer,omitempty"`
	LineItems []InvoiceLineItem `json:"invoice_line_items,omitempty"`
}

// EffectiveStatus returns the display status: a sent invoice past its due
// date reads as overdue without a persisted transition.
func (inv *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if inv.Status == InvoiceStatusSent && now.After(inv.DueDate) {
		return InvoiceStatusOverdue
	}
	return inv.Status
}

type InvoiceLineItem struct {
	ID           string    `json:"id"`
	InvoiceID    string    `json:"invoice_id"`
	Description  string    `json:"description"`
	Quantity     float64   `json:"quantity"`
	Rate         float64   `json:"rate"`
	Amount       float64   `json:"amount"`
	TimeEntryIDs []string  `json:"time_entry_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// DetailLevel selects line-item granularity at invoice creation.
type DetailLevel string

const (
	DetailLevelTask    DetailLevel = "task"
	DetailLevelSubtask DetailLevel = "subtask"
)

func (dl DetailLevel) Valid() bool {
	return dl == DetailLevelTask || dl == DetailLevelSubtask
}

type CreateInvoiceRequest struct {
	CustomerID   string      `json:"customer_id"`
	TimeEntryIDs []string    `json:"time_entry_ids"`
	DetailLevel  DetailLevel `json:"detail_level"`
}
