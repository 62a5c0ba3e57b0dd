package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timebill/internal/models"
)

type AgreementRepository struct {
	db *sql.DB
}

func NewAgreementRepository(db *sql.DB) *AgreementRepository {
	return &AgreementRepository{db: db}
}

const agreementColumns = `id, user_id, customer_id, name, description, contract_type, rate,
	start_date, end_date, is_active, created_at, updated_at`

func scanAgreement(row interface{ Scan(...any) error }) (*models.Agreement, error) {
	var a models.Agreement
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.CustomerID,
		&a.Name,
		&a.Description,
		&a.ContractType,
		&a.Rate,
		&a.StartDate,
		&a.EndDate,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AgreementRepository) Create(userID string, req *models.CreateAgreementRequest) (*models.Agreement, error) {
	now := time.Now().UTC()
	agreement := &models.Agreement{
		ID:           uuid.NewString(),
		UserID:       userID,
		CustomerID:   req.CustomerID,
		Name:         req.Name,
		Description:  req.Description,
		ContractType: req.ContractType,
		Rate:         req.Rate,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := r.db.Exec(`
		INSERT INTO agreements (`+agreementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		agreement.ID,
		agreement.UserID,
		agreement.CustomerID,
		agreement.Name,
		agreement.Description,
		agreement.ContractType,
		agreement.Rate,
		agreement.StartDate,
		agreement.EndDate,
		agreement.IsActive,
		agreement.CreatedAt,
		agreement.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agreement: %w", err)
	}

	return agreement, nil
}

func (r *AgreementRepository) GetByID(userID, id string) (*models.Agreement, error) {
	row := r.db.QueryRow(`
		SELECT `+agreementColumns+`
		FROM agreements
		WHERE id = ? AND user_id = ?
	`, id, userID)

	agreement, err := scanAgreement(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agreement: %w", err)
	}
	return agreement, nil
}

// ListByCustomer returns the customer's active agreements, newest start first.
func (r *AgreementRepository) ListByCustomer(userID, customerID string) ([]*models.Agreement, error) {
	rows, err := r.db.Query(`
		SELECT `+agreementColumns+`
		FROM agreements
		WHERE user_id = ? AND customer_id = ? AND is_active = 1
		ORDER BY start_date DESC
	`, userID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agreements: %w", err)
	}
	defer rows.Close()

	var agreements []*models.Agreement
	for rows.Next() {
		agreement, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agreement: %w", err)
		}
		agreements = append(agreements, agreement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return agreements, nil
}

func (r *AgreementRepository) Deactivate(userID, id string) error {
	result, err := r.db.Exec(`
		UPDATE agreements SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate agreement: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
