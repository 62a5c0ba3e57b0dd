package models

import "time"

type ExpenseType string

const (
	ExpenseTypeOneOff  ExpenseType = "one-off"
	ExpenseTypeMonthly ExpenseType = "monthly"
)

func (et ExpenseType) Valid() bool {
	return et == ExpenseTypeOneOff || et == ExpenseTypeMonthly
}

type Expense struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	CustomerID  *string     `json:"customer_id,omitempty"`
	Name        string      `json:"name"`
	Amount      float64     `json:"amount"`
	ExpenseType ExpenseType `json:"expense_type"`
	Category    *string     `json:"category,omitempty"`
	Date        time.Time   `json:"date"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	// Joined customer name when the expense is client-linked.
	CustomerName *string `json:"customer_name,omitempty"`
}

type CreateExpenseRequest struct {
	CustomerID  *string     `json:"customer_id,omitempty"`
	Name        string      `json:"name"`
	Amount      float64     `json:"amount"`
	ExpenseType ExpenseType `json:"expense_type"`
	Category    *string     `json:"category,omitempty"`
	Date        time.Time   `json:"date"`
}
