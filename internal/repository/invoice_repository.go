package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"timebill/internal/models"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, user_id, customer_id, invoice_number, invoice_date, due_date, status,
	subtotal, vat_percentage, vat_amount, total_amount, notes, sent_at, paid_at, created_at, updated_at`

func scanInvoice(row interface{ Scan(...any) error }) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&inv.CustomerID,
		&inv.InvoiceNumber,
		&inv.InvoiceDate,
		&inv.DueDate,
		&inv.Status,
		&inv.Subtotal,
		&inv.VATPercentage,
		&inv.VATAmount,
		&inv.TotalAmount,
		&inv.Notes,
		&inv.SentAt,
		&inv.PaidAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) Create(inv *models.Invoice) (*models.Invoice, error) {
	now := time.Now().UTC()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		inv.ID,
		inv.UserID,
		inv.CustomerID,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.DueDate,
		inv.Status,
		inv.Subtotal,
		inv.VATPercentage,
		inv.VATAmount,
		inv.TotalAmount,
		inv.Notes,
		inv.SentAt,
		inv.PaidAt,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) AddLineItem(invoiceID string, item *models.InvoiceLineItem) (*models.InvoiceLineItem, error) {
	item.ID = uuid.NewString()
	item.InvoiceID = invoiceID
	item.CreatedAt = time.Now().UTC()

	entryIDs, err := json.Marshal(item.TimeEntryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal time entry ids: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO invoice_line_items (id, invoice_id, description, quantity, rate, amount, time_entry_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID,
		item.InvoiceID,
		item.Description,
		item.Quantity,
		item.Rate,
		item.Amount,
		string(entryIDs),
		item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice line item: %w", err)
	}
	return item, nil
}

// GetByID returns the invoice with its line items.
func (r *InvoiceRepository) GetByID(userID, id string) (*models.Invoice, error) {
	row := r.db.QueryRow(`
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = ? AND user_id = ?
	`, id, userID)

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.lineItems(id)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (r *InvoiceRepository) lineItems(invoiceID string) ([]models.InvoiceLineItem, error) {
	rows, err := r.db.Query(`
		SELECT id, invoice_id, description, quantity, rate, amount, time_entry_ids, created_at
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY created_at ASC, id ASC
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceLineItem
	for rows.Next() {
		var item models.InvoiceLineItem
		var entryIDs *string
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Description,
			&item.Quantity,
			&item.Rate,
			&item.Amount,
			&entryIDs,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if entryIDs != nil && *entryIDs != "" {
			if err := json.Unmarshal([]byte(*entryIDs), &item.TimeEntryIDs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal time entry ids: %w", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}

// ListByUser returns the user's invoices, newest first, joined with the
// customer for display.
func (r *InvoiceRepository) ListByUser(userID string) ([]*models.Invoice, error) {
	rows, err := r.db.Query(`
		SELECT `+prefixColumns("i", invoiceColumns)+`,
			c.company_name, c.default_rate, c.rate_type, c.payment_terms, c.is_internal
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.user_id = ?
		ORDER BY i.invoice_date DESC, i.invoice_number DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		var customer models.Customer
		err := rows.Scan(
			&inv.ID,
			&inv.UserID,
			&inv.CustomerID,
			&inv.InvoiceNumber,
			&inv.InvoiceDate,
			&inv.DueDate,
			&inv.Status,
			&inv.Subtotal,
			&inv.VATPercentage,
			&inv.VATAmount,
			&inv.TotalAmount,
			&inv.Notes,
			&inv.SentAt,
			&inv.PaidAt,
			&inv.CreatedAt,
			&inv.UpdatedAt,
			&customer.CompanyName,
			&customer.DefaultRate,
			&customer.RateType,
			&customer.PaymentTerms,
			&customer.IsInternal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		customer.ID = inv.CustomerID
		customer.UserID = inv.UserID
		inv.Customer = &customer
		invoices = append(invoices, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return invoices, nil
}

// LatestInvoiceNumber returns the most recently created invoice number for
// the user, or "" when none exists.
func (r *InvoiceRepository) LatestInvoiceNumber(userID string) (string, error) {
	var number string
	err := r.db.QueryRow(`
		SELECT invoice_number
		FROM invoices
		WHERE user_id = ?
		ORDER BY created_at DESC, invoice_number DESC
		LIMIT 1
	`, userID).Scan(&number)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest invoice number: %w", err)
	}
	return number, nil
}

// UpdateStatus persists a status transition with its timestamp side effects.
func (r *InvoiceRepository) UpdateStatus(userID, id string, status models.InvoiceStatus, sentAt, paidAt *time.Time) error {
	setParts := []string{"status = ?", "updated_at = CURRENT_TIMESTAMP"}
	args := []any{status}
	if sentAt != nil {
		setParts = append(setParts, "sent_at = ?")
		args = append(args, *sentAt)
	}
	if paidAt != nil {
		setParts = append(setParts, "paid_at = ?")
		args = append(args, *paidAt)
	}

	query := "UPDATE invoices SET " + joinSetParts(setParts) + " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the invoice; line items cascade.
func (r *InvoiceRepository) Delete(userID, id string) error {
	result, err := r.db.Exec("DELETE FROM invoices WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, col := range cols {
		cols[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}

