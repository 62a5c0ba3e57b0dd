package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebill/internal/models"
)

type TimeEntryRepository struct {
	db *sql.DB
}

func NewTimeEntryRepository(db *sql.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// entrySelect joins the denormalized customer rate fields and the task name
// that billing needs alongside every entry.
const entrySelect = `
	SELECT te.id, te.user_id, te.customer_id, te.agreement_id, te.task_id, te.subtask,
		te.task_description, te.start_time, te.end_time, te.duration_minutes,
		te.is_billable, te.is_invoiced, te.invoice_id, te.drive_required, te.kilometers,
		te.created_at, te.updated_at,
		c.company_name, c.default_rate, c.rate_type, c.payment_terms, c.is_internal,
		t.id, t.name
	FROM time_entries te
	JOIN customers c ON c.id = te.customer_id
	LEFT JOIN tasks t ON t.id = te.task_id
`

func scanEntry(row interface{ Scan(...any) error }) (*models.TimeEntry, error) {
	var e models.TimeEntry
	var customer models.Customer
	var taskID, taskName *string

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CustomerID,
		&e.AgreementID,
		&e.TaskID,
		&e.Subtask,
		&e.TaskDescription,
		&e.StartTime,
		&e.EndTime,
		&e.DurationMinutes,
		&e.IsBillable,
		&e.IsInvoiced,
		&e.InvoiceID,
		&e.DriveRequired,
		&e.Kilometers,
		&e.CreatedAt,
		&e.UpdatedAt,
		&customer.CompanyName,
		&customer.DefaultRate,
		&customer.RateType,
		&customer.PaymentTerms,
		&customer.IsInternal,
		&taskID,
		&taskName,
	)
	if err != nil {
		return nil, err
	}

	customer.ID = e.CustomerID
	customer.UserID = e.UserID
	e.Customer = &customer
	if taskID != nil {
		e.Task = &models.Task{ID: *taskID, Name: *taskName, CustomerID: e.CustomerID, UserID: e.UserID}
	}
	return &e, nil
}

// DurationMinutes derives the stored duration from the entry's timestamps.
// Client-supplied durations are never trusted.
func DurationMinutes(start, end time.Time) int {
	return int(end.Sub(start).Minutes())
}

func (r *TimeEntryRepository) Create(userID string, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := r.db.Exec(`
		INSERT INTO time_entries (id, user_id, customer_id, agreement_id, task_id, subtask,
			task_description, start_time, end_time, duration_minutes, is_billable,
			is_invoiced, drive_required, kilometers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)
	`,
		id,
		userID,
		req.CustomerID,
		req.AgreementID,
		req.TaskID,
		req.Subtask,
		req.TaskDescription,
		req.StartTime,
		req.EndTime,
		DurationMinutes(req.StartTime, req.EndTime),
		req.IsBillable,
		req.DriveRequired,
		req.Kilometers,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	return r.GetByID(userID, id)
}

func (r *TimeEntryRepository) GetByID(userID, id string) (*models.TimeEntry, error) {
	row := r.db.QueryRow(entrySelect+`WHERE te.id = ? AND te.user_id = ?`, id, userID)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return entry, nil
}

// ListRange returns the user's entries with start_time inside the optional
// bounds, joined with customer and task, oldest first.
func (r *TimeEntryRepository) ListRange(userID string, start, end *time.Time) ([]*models.TimeEntry, error) {
	query := entrySelect + `WHERE te.user_id = ?`
	args := []any{userID}
	if start != nil {
		query += ` AND te.start_time >= ?`
		args = append(args, *start)
	}
	if end != nil {
		query += ` AND te.start_time <= ?`
		args = append(args, *end)
	}
	query += ` ORDER BY te.start_time ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListByIDs fetches a specific selection of the user's entries.
func (r *TimeEntryRepository) ListByIDs(userID string, ids []string) ([]*models.TimeEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, userID)

	rows, err := r.db.Query(entrySelect+`WHERE te.id IN (`+placeholders+`) AND te.user_id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]*models.TimeEntry, error) {
	var entries []*models.TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entries, nil
}

func (r *TimeEntryRepository) Update(userID, id string, update *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	current, err := r.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	setParts := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	startTime := current.StartTime
	endTime := current.EndTime

	if update.AgreementID != nil {
		setParts = append(setParts, "agreement_id = ?")
		args = append(args, *update.AgreementID)
	}
	if update.TaskID != nil {
		setParts = append(setParts, "task_id = ?")
		args = append(args, *update.TaskID)
	}
	if update.Subtask != nil {
		setParts = append(setParts, "subtask = ?")
		args = append(args, *update.Subtask)
	}
	if update.TaskDescription != nil {
		setParts = append(setParts, "task_description = ?")
		args = append(args, *update.TaskDescription)
	}
	if update.StartTime != nil {
		setParts = append(setParts, "start_time = ?")
		args = append(args, *update.StartTime)
		startTime = *update.StartTime
	}
	if update.EndTime != nil {
		setParts = append(setParts, "end_time = ?")
		args = append(args, *update.EndTime)
		endTime = *update.EndTime
	}
	if update.StartTime != nil || update.EndTime != nil {
		setParts = append(setParts, "duration_minutes = ?")
		args = append(args, DurationMinutes(startTime, endTime))
	}
	if update.IsBillable != nil {
		setParts = append(setParts, "is_billable = ?")
		args = append(args, *update.IsBillable)
	}
	if update.DriveRequired != nil {
		setParts = append(setParts, "drive_required = ?")
		args = append(args, *update.DriveRequired)
	}
	if update.Kilometers != nil {
		setParts = append(setParts, "kilometers = ?")
		args = append(args, *update.Kilometers)
	}

	if len(setParts) == 1 {
		return current, nil
	}

	query := "UPDATE time_entries SET " + joinSetParts(setParts) + " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)

	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	return r.GetByID(userID, id)
}

func (r *TimeEntryRepository) Delete(userID, id string) error {
	result, err := r.db.Exec("DELETE FROM time_entries WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkInvoiced flags an entry as consumed by an invoice. The update is
// conditional on the entry still being uninvoiced so two concurrent invoice
// creations cannot both consume it; a conflict surfaces as sql.ErrNoRows.
func (r *TimeEntryRepository) MarkInvoiced(userID, id, invoiceID string) error {
	result, err := r.db.Exec(`
		UPDATE time_entries
		SET is_invoiced = 1, invoice_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND is_invoiced = 0
	`, invoiceID, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark time entry invoiced: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResetInvoiced returns an entry to the uninvoiced state. Used both for
// invoice deletion and for compensating rollback during creation.
func (r *TimeEntryRepository) ResetInvoiced(userID, id string) error {
	_, err := r.db.Exec(`
		UPDATE time_entries
		SET is_invoiced = 0, invoice_id = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to reset time entry: %w", err)
	}
	return nil
}
