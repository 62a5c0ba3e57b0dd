package models

import "time"

// Profile holds the user's business settings consumed by billing: the internal
// hourly rate used for cost accounting and the display currency.
type Profile struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	CompanyName        *string   `json:"company_name,omitempty"`
	InternalHourlyRate float64   `json:"internal_hourly_rate"`
	Currency           string    `json:"currency"`
	BusinessAddress    *string   `json:"business_address,omitempty"`
	BusinessPhone      *string   `json:"business_phone,omitempty"`
	BusinessVATNumber  *string   `json:"business_vat_number,omitempty"`
	BusinessEmail      *string   `json:"business_email,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	CompanyName        *string  `json:"company_name,omitempty"`
	InternalHourlyRate *float64 `json:"internal_hourly_rate,omitempty"`
	Currency           *string  `json:"currency,omitempty"`
	BusinessAddress    *string  `json:"business_address,omitempty"`
	BusinessPhone      *string  `json:"business_phone,omitempty"`
	BusinessVATNumber  *string  `json:"business_vat_number,omitempty"`
	BusinessEmail      *string  `json:"business_email,omitempty"`
}
