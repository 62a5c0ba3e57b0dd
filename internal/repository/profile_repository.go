package repository

import (
	"database/sql"
	"fmt"
	"time"

	"timebill/internal/models"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, company_name, internal_hourly_rate, currency, business_address,
	business_phone, business_vat_number, business_email, created_at, updated_at`

// Get returns the user's profile. A missing row surfaces as sql.ErrNoRows;
// callers that only need billing defaults use GetOrDefault instead.
func (r *ProfileRepository) Get(userID string) (*models.Profile, error) {
	row := r.db.QueryRow(`
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = ?
	`, userID)

	var p models.Profile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.CompanyName,
		&p.InternalHourlyRate,
		&p.Currency,
		&p.BusinessAddress,
		&p.BusinessPhone,
		&p.BusinessVATNumber,
		&p.BusinessEmail,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// GetOrDefault returns the profile, or a zero-rate profile in the configured
// default currency when the user has never saved one.
func (r *ProfileRepository) GetOrDefault(userID, defaultCurrency string) (*models.Profile, error) {
	profile, err := r.Get(userID)
	if err == sql.ErrNoRows {
		return &models.Profile{ID: userID, Currency: defaultCurrency}, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Upsert creates the profile row on first save.
func (r *ProfileRepository) Upsert(userID, email string) (*models.Profile, error) {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO profiles (id, email, internal_hourly_rate, currency, created_at, updated_at)
		VALUES (?, ?, 0, 'USD', ?, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email, updated_at = excluded.updated_at
	`, userID, email, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return r.Get(userID)
}

func (r *ProfileRepository) Update(userID string, update *models.UpdateProfileRequest) (*models.Profile, error) {
	setParts := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if update.CompanyName != nil {
		setParts = append(setParts, "company_name = ?")
		args = append(args, *update.CompanyName)
	}
	if update.InternalHourlyRate != nil {
		setParts = append(setParts, "internal_hourly_rate = ?")
		args = append(args, *update.InternalHourlyRate)
	}
	if update.Currency != nil {
		setParts = append(setParts, "currency = ?")
		args = append(args, *update.Currency)
	}
	if update.BusinessAddress != nil {
		setParts = append(setParts, "business_address = ?")
		args = append(args, *update.BusinessAddress)
	}
	if update.BusinessPhone != nil {
		setParts = append(setParts, "business_phone = ?")
		args = append(args, *update.BusinessPhone)
	}
	if update.BusinessVATNumber != nil {
		setParts = append(setParts, "business_vat_number = ?")
		args = append(args, *update.BusinessVATNumber)
	}
	if update.BusinessEmail != nil {
		setParts = append(setParts, "business_email = ?")
		args = append(args, *update.BusinessEmail)
	}

	query := "UPDATE profiles SET " + joinSetParts(setParts) + " WHERE id = ?"
	args = append(args, userID)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil, sql.ErrNoRows
	}

	return r.Get(userID)
}
