package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timebill/internal/models"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, user_id, company_name, contact_person, email, phone, billing_address,
	vat_number, default_rate, rate_type, payment_terms, is_internal, is_active, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.CompanyName,
		&c.ContactPerson,
		&c.Email,
		&c.Phone,
		&c.BillingAddress,
		&c.VATNumber,
		&c.DefaultRate,
		&c.RateType,
		&c.PaymentTerms,
		&c.IsInternal,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Create(userID string, req *models.CreateCustomerRequest) (*models.Customer, error) {
	paymentTerms := models.DefaultPaymentTermsDays
	if req.PaymentTerms != nil {
		paymentTerms = *req.PaymentTerms
	}

	now := time.Now().UTC()
	customer := &models.Customer{
		ID:             uuid.NewString(),
		UserID:         userID,
		CompanyName:    req.CompanyName,
		ContactPerson:  req.ContactPerson,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		VATNumber:      req.VATNumber,
		DefaultRate:    req.DefaultRate,
		RateType:       req.RateType,
		PaymentTerms:   paymentTerms,
		IsInternal:     req.IsInternal,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.db.Exec(`
		INSERT INTO customers (`+customerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		customer.ID,
		customer.UserID,
		customer.CompanyName,
		customer.ContactPerson,
		customer.Email,
		customer.Phone,
		customer.BillingAddress,
		customer.VATNumber,
		customer.DefaultRate,
		customer.RateType,
		customer.PaymentTerms,
		customer.IsInternal,
		customer.IsActive,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) GetByID(userID, id string) (*models.Customer, error) {
	row := r.db.QueryRow(`
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = ? AND user_id = ?
	`, id, userID)

	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// ListActive returns the user's active customers ordered by company name.
func (r *CustomerRepository) ListActive(userID string) ([]*models.Customer, error) {
	rows, err := r.db.Query(`
		SELECT `+customerColumns+`
		FROM customers
		WHERE user_id = ? AND is_active = 1
		ORDER BY company_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return customers, nil
}

func (r *CustomerRepository) Update(userID, id string, update *models.UpdateCustomerRequest) (*models.Customer, error) {
	setParts := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if update.CompanyName != nil {
		setParts = append(setParts, "company_name = ?")
		args = append(args, *update.CompanyName)
	}
	if update.ContactPerson != nil {
		setParts = append(setParts, "contact_person = ?")
		args = append(args, *update.ContactPerson)
	}
	if update.Email != nil {
		setParts = append(setParts, "email = ?")
		args = append(args, *update.Email)
	}
	if update.Phone != nil {
		setParts = append(setParts, "phone = ?")
		args = append(args, *update.Phone)
	}
	if update.BillingAddress != nil {
		setParts = append(setParts, "billing_address = ?")
		args = append(args, *update.BillingAddress)
	}
	if update.VATNumber != nil {
		setParts = append(setParts, "vat_number = ?")
		args = append(args, *update.VATNumber)
	}
	if update.DefaultRate != nil {
		setParts = append(setParts, "default_rate = ?")
		args = append(args, *update.DefaultRate)
	}
	if update.RateType != nil {
		setParts = append(setParts, "rate_type = ?")
		args = append(args, *update.RateType)
	}
	if update.PaymentTerms != nil {
		setParts = append(setParts, "payment_terms = ?")
		args = append(args, *update.PaymentTerms)
	}
	if update.IsInternal != nil {
		setParts = append(setParts, "is_internal = ?")
		args = append(args, *update.IsInternal)
	}

	query := "UPDATE customers SET " + joinSetParts(setParts) + " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, sql.ErrNoRows
	}

	return r.GetByID(userID, id)
}

// Deactivate soft-deletes a customer.
func (r *CustomerRepository) Deactivate(userID, id string) error {
	result, err := r.db.Exec(`
		UPDATE customers SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate customer: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func joinSetParts(parts []string) string {
	clause := parts[0]
	for i := 1; i < len(parts); i++ {
		clause += ", " + parts[i]
	}
	return clause
}
