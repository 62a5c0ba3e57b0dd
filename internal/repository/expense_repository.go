package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timebill/internal/models"
)

type ExpenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = `id, user_id, customer_id, name, amount, expense_type, category, date,
	is_active, created_at, updated_at`

func (r *ExpenseRepository) Create(userID string, req *models.CreateExpenseRequest) (*models.Expense, error) {
	now := time.Now().UTC()
	expense := &models.Expense{
		ID:          uuid.NewString(),
		UserID:      userID,
		CustomerID:  req.CustomerID,
		Name:        req.Name,
		Amount:      req.Amount,
		ExpenseType: req.ExpenseType,
		Category:    req.Category,
		Date:        req.Date,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.Exec(`
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.ID,
		expense.UserID,
		expense.CustomerID,
		expense.Name,
		expense.Amount,
		expense.ExpenseType,
		expense.Category,
		expense.Date,
		expense.IsActive,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return expense, nil
}

// ListInRange returns active expenses dated inside [start, end], joined with
// the customer name when client-linked, oldest first.
func (r *ExpenseRepository) ListInRange(userID string, start, end time.Time) ([]*models.Expense, error) {
	rows, err := r.db.Query(`
		SELECT e.id, e.user_id, e.customer_id, e.name, e.amount, e.expense_type, e.category,
			e.date, e.is_active, e.created_at, e.updated_at, c.company_name
		FROM expenses e
		LEFT JOIN customers c ON c.id = e.customer_id
		WHERE e.user_id = ? AND e.is_active = 1 AND e.date >= ? AND e.date <= ?
		ORDER BY e.date ASC
	`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.CustomerID,
			&e.Name,
			&e.Amount,
			&e.ExpenseType,
			&e.Category,
			&e.Date,
			&e.IsActive,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.CustomerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return expenses, nil
}

// Deactivate soft-deletes an expense so past reports stay reproducible from
// the raw rows.
func (r *ExpenseRepository) Deactivate(userID, id string) error {
	result, err := r.db.Exec(`
		UPDATE expenses SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate expense: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
