package models

import "time"

// Agreement is informational only. It carries a rate and contract type for
// reference, but billing always resolves rates from the Customer; nothing in
// the billing package accepts an Agreement.
type Agreement struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	CustomerID   string     `json:"customer_id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	ContractType RateType   `json:"contract_type"`
	Rate         float64    `json:"rate"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateAgreementRequest struct {
	CustomerID   string     `json:"customer_id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	ContractType RateType   `json:"contract_type"`
	Rate         float64    `json:"rate"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}
