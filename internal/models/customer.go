package models

import "time"

type RateType string

const (
	RateTypeHourly  RateType = "hourly"
	RateTypeMonthly RateType = "monthly"
)

func (rt RateType) Valid() bool {
	return rt == RateTypeHourly || rt == RateTypeMonthly
}

// DefaultPaymentTermsDays is applied when a customer has no explicit payment terms.
const DefaultPaymentTermsDays = 14

type Customer struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CompanyName    string    `json:"company_name"`
	ContactPerson  *string   `json:"contact_person,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	BillingAddress *string   `json:"billing_address,omitempty"`
	VATNumber      *string   `json:"vat_number,omitempty"`
	DefaultRate    float64   `json:"default_rate"`
	RateType       RateType  `json:"rate_type"`
	PaymentTerms   int       `json:"payment_terms"`
	IsInternal     bool      `json:"is_internal"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PaymentTermsOrDefault returns the customer's payment terms, falling back to 14 days.
func (c *Customer) PaymentTermsOrDefault() int {
	if c.PaymentTerms <= 0 {
		return DefaultPaymentTermsDays
	}
	return c.PaymentTerms
}

type CreateCustomerRequest struct {
	CompanyName    string   `json:"company_name"`
	ContactPerson  *string  `json:"contact_person,omitempty"`
	Email          *string  `json:"email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	BillingAddress *string  `json:"billing_address,omitempty"`
	VATNumber      *string  `json:"vat_number,omitempty"`
	DefaultRate    float64  `json:"default_rate"`
	RateType       RateType `json:"rate_type"`
	PaymentTerms   *int     `json:"payment_terms,omitempty"`
	IsInternal     bool     `json:"is_internal"`
}

type UpdateCustomerRequest struct {
	CompanyName    *string   `json:"company_name,omitempty"`
	ContactPerson  *string   `json:"contact_person,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	BillingAddress *string   `json:"billing_address,omitempty"`
	VATNumber      *string   `json:"vat_number,omitempty"`
	DefaultRate    *float64  `json:"default_rate,omitempty"`
	RateType       *RateType `json:"rate_type,omitempty"`
	PaymentTerms   *int      `json:"payment_terms,omitempty"`
	IsInternal     *bool     `json:"is_internal,omitempty"`
}
