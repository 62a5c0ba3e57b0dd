package mailer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Outbox is a local queue of invoice emails that could not be dispatched.
// Entries are retried by Flush, typically on startup or a timer.
type Outbox struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOutbox(db *sql.DB, logger *zap.Logger) *Outbox {
	return &Outbox{db: db, logger: logger}
}

// Enqueue stores a failed email for a later retry.
func (o *Outbox) Enqueue(invoiceID, userID string, email *InvoiceEmail) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice email: %w", err)
	}

	_, err = o.db.Exec(`
		INSERT INTO pending_invoice_emails (invoice_id, user_id, payload, created_at, retry_count)
		VALUES (?, ?, ?, ?, 0)
	`, invoiceID, userID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue invoice email: %w", err)
	}

	o.logger.Debug("Invoice email queued",
		zap.String("invoice_id", invoiceID),
		zap.String("user_id", userID))
	return nil
}

// Flush retries up to limit pending emails, oldest first. Emails that send
// are removed; failures get their retry count bumped and stay queued.
// Corrupted payloads are dropped.
func (o *Outbox) Flush(client *Client, limit int) error {
	rows, err := o.db.Query(`
		SELECT id, payload, retry_count
		FROM pending_invoice_emails
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return fmt.Errorf("failed to query pending emails: %w", err)
	}
	defer rows.Close()

	type pending struct {
		id         int64
		payload    string
		retryCount int
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.payload, &p.retryCount); err != nil {
			o.logger.Error("Failed to scan pending email", zap.Error(err))
			continue
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	var sent, failed int
	for _, p := range batch {
		var email InvoiceEmail
		if err := json.Unmarshal([]byte(p.payload), &email); err != nil {
			o.logger.Error("Dropping corrupted pending email",
				zap.Error(err), zap.Int64("id", p.id))
			o.db.Exec("DELETE FROM pending_invoice_emails WHERE id = ?", p.id)
			continue
		}

		if err := client.Send(&email); err != nil {
			failed++
			o.db.Exec(`
				UPDATE pending_invoice_emails
				SET retry_count = retry_count + 1, last_attempt = ?
				WHERE id = ?
			`, time.Now().UTC(), p.id)
			continue
		}

		sent++
		if _, err := o.db.Exec("DELETE FROM pending_invoice_emails WHERE id = ?", p.id); err != nil {
			o.logger.Error("Failed to remove sent email from outbox",
				zap.Error(err), zap.Int64("id", p.id))
		}
	}

	if sent > 0 || failed > 0 {
		o.logger.Info("Outbox flushed",
			zap.Int("sent", sent),
			zap.Int("failed", failed))
	}
	return nil
}

// Pending returns the number of queued emails.
func (o *Outbox) Pending() (int, error) {
	var count int
	if err := o.db.QueryRow("SELECT COUNT(*) FROM pending_invoice_emails").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending emails: %w", err)
	}
	return count, nil
}
