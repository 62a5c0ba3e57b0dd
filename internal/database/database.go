package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	logger *zap.Logger
}

func New(storagePath string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", storagePath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &DB{
		DB:     db,
		logger: logger,
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established", zap.String("path", storagePath))
	return database, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		// Business settings per user
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			company_name TEXT,
			internal_hourly_rate REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			business_address TEXT,
			business_phone TEXT,
			business_vat_number TEXT,
			business_email TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			company_name TEXT NOT NULL,
			contact_person TEXT,
			email TEXT,
			phone TEXT,
			billing_address TEXT,
			vat_number TEXT,
			default_rate REAL NOT NULL DEFAULT 0,
			rate_type TEXT NOT NULL DEFAULT 'hourly',
			payment_terms INTEGER NOT NULL DEFAULT 14,
			is_internal INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_customers_user ON customers(user_id)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			description TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_customer ON tasks(customer_id)`,
		`CREATE TABLE IF NOT EXISTS agreements (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			description TEXT,
			contract_type TEXT NOT NULL DEFAULT 'hourly',
			rate REAL NOT NULL DEFAULT 0,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS time_entries (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			agreement_id TEXT REFERENCES agreements(id),
			task_id TEXT REFERENCES tasks(id),
			subtask TEXT,
			task_description TEXT NOT NULL DEFAULT '',
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			duration_minutes INTEGER NOT NULL,
			is_billable INTEGER NOT NULL DEFAULT 1,
			is_invoiced INTEGER NOT NULL DEFAULT 0,
			invoice_id TEXT,
			drive_required INTEGER NOT NULL DEFAULT 0,
			kilometers REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_time_entries_user_start ON time_entries(user_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_time_entries_invoice ON time_entries(invoice_id)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			customer_id TEXT REFERENCES customers(id),
			name TEXT NOT NULL,
			amount REAL NOT NULL,
			expense_type TEXT NOT NULL DEFAULT 'one-off',
			category TEXT,
			date TIMESTAMP NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			invoice_number TEXT NOT NULL,
			invoice_date TIMESTAMP NOT NULL,
			due_date TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			subtotal REAL NOT NULL,
			vat_percentage REAL NOT NULL,
			vat_amount REAL NOT NULL,
			total_amount REAL NOT NULL,
			notes TEXT,
			sent_at TIMESTAMP,
			paid_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, invoice_number)
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_line_items (
			id TEXT PRIMARY KEY,
			invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			quantity REAL NOT NULL,
			rate REAL NOT NULL,
			amount REAL NOT NULL,
			time_entry_ids TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_invoice ON invoice_line_items(invoice_id)`,
		// Outbox for invoice emails that could not be dispatched
		`CREATE TABLE IF NOT EXISTS pending_invoice_emails (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			retry_count INTEGER NOT NULL DEFAULT 0,
			last_attempt TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_invoice_emails_user ON pending_invoice_emails(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	db.logger.Info("Database migrations completed")
	return nil
}

func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	db.logger.Info("Database connection closed")
	return nil
}
