package models

import "time"

type TimeEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CustomerID      string    `json:"customer_id"`
	AgreementID     *string   `json:"agreement_id,omitempty"`
	TaskID          *string   `json:"task_id,omitempty"`
	Subtask         *string   `json:"subtask,omitempty"`
	TaskDescription string    `json:"task_description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	IsBillable      bool      `json:"is_billable"`
	IsInvoiced      bool      `json:"is_invoiced"`
	InvoiceID       *string   `json:"invoice_id,omitempty"`
	DriveRequired   bool      `json:"drive_required"`
	Kilometers      *float64  `json:"kilometers,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined rows, populated by range queries.
	Customer *Customer `json:"customer,omitempty"`
	Task     *Task     `json:"task,omitempty"`
}

// Hours converts the stored duration to decimal hours.
func (e *TimeEntry) Hours() float64 {
	return float64(e.DurationMinutes) / 60
}

type CreateTimeEntryRequest struct {
	CustomerID      string    `json:"customer_id"`
	AgreementID     *string   `json:"agreement_id,omitempty"`
	TaskID          *string   `json:"task_id,omitempty"`
	Subtask         *string   `json:"subtask,omitempty"`
	TaskDescription string    `json:"task_description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	IsBillable      bool      `json:"is_billable"`
	DriveRequired   bool      `json:"drive_required"`
	Kilometers      *float64  `json:"kilometers,omitempty"`
}

type UpdateTimeEntryRequest struct {
	AgreementID     *string    `json:"agreement_id,omitempty"`
	TaskID          *string    `json:"task_id,omitempty"`
	Subtask         *string    `json:"subtask,omitempty"`
	TaskDescription *string    `json:"task_description,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	IsBillable      *bool      `json:"is_billable,omitempty"`
	DriveRequired   *bool      `json:"drive_required,omitempty"`
	Kilometers      *float64   `json:"kilometers,omitempty"`
}
