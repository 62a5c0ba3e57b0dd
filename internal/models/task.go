package models

import "time"

// Task is a per-customer grouping key for invoice line items. It carries no
// billing effect of its own.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CustomerID  string    `json:"customer_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateTaskRequest struct {
	CustomerID  string  `json:"customer_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}
