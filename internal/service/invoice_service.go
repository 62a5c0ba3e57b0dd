package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"timebill/internal/billing"
	"timebill/internal/mailer"
	"timebill/internal/models"
)

type invoiceStore interface {
	Create(inv *models.Invoice) (*models.Invoice, error)
	AddLineItem(invoiceID string, item *models.InvoiceLineItem) (*models.InvoiceLineItem, error)
	GetByID(userID, id string) (*models.Invoice, error)
	ListByUser(userID string) ([]*models.Invoice, error)
	LatestInvoiceNumber(userID string) (string, error)
	UpdateStatus(userID, id string, status models.InvoiceStatus, sentAt, paidAt *time.Time) error
	Delete(userID, id string) error
}

type invoiceEntryStore interface {
	ListByIDs(userID string, ids []string) ([]*models.TimeEntry, error)
	MarkInvoiced(userID, id, invoiceID string) error
	ResetInvoiced(userID, id string) error
}

type customerGetter interface {
	GetByID(userID, id string) (*models.Customer, error)
}

type profileGetter interface {
	GetOrDefault(userID, defaultCurrency string) (*models.Profile, error)
}

type invoiceMailer interface {
	Enabled() bool
	Send(email *mailer.InvoiceEmail) error
}

type emailOutbox interface {
	Enqueue(invoiceID, userID string, email *mailer.InvoiceEmail) error
}

type InvoiceService struct {
	invoices        invoiceStore
	entries         invoiceEntryStore
	customers       customerGetter
	profiles        profileGetter
	mail            invoiceMailer
	outbox          emailOutbox
	vatPercentage   float64
	defaultCurrency string
	logger          *zap.Logger
}

func NewInvoiceService(
	invoices invoiceStore,
	entries invoiceEntryStore,
	customers customerGetter,
	profiles profileGetter,
	mail invoiceMailer,
	outbox emailOutbox,
	vatPercentage float64,
	defaultCurrency string,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:        invoices,
		entries:         entries,
		customers:       customers,
		profiles:        profiles,
		mail:            mail,
		outbox:          outbox,
		vatPercentage:   vatPercentage,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// Create builds and persists a draft invoice from the selected time entries,
// then flags each entry as invoiced. Any failure along the way rolls the
// whole creation back so no entry ends up half-consumed.
func (s *InvoiceService) Create(userID string, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	if req.CustomerID == "" {
		return nil, NewValidationError("customer_id", "customer is required")
	}
	if len(req.TimeEntryIDs) == 0 {
		return nil, NewValidationError("time_entry_ids", "at least one time entry is required")
	}
	detailLevel := req.DetailLevel
	if detailLevel == "" {
		detailLevel = models.DetailLevelTask
	}
	if !detailLevel.Valid() {
		return nil, NewValidationError("detail_level", "detail level must be task or subtask")
	}

	customer, err := s.customers.GetByID(userID, req.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("customer", req.CustomerID)
	}
	if err != nil {
		return nil, NewStoreError("get customer", err)
	}
	if customer.IsInternal {
		return nil, NewValidationError("customer_id", "internal customers cannot be invoiced")
	}

	entries, err := s.entries.ListByIDs(userID, req.TimeEntryIDs)
	if err != nil {
		return nil, NewStoreError("list time entries", err)
	}
	if len(entries) != len(req.TimeEntryIDs) {
		return nil, NewValidationError("time_entry_ids", "one or more time entries do not exist")
	}
	for _, entry := range entries {
		if entry.CustomerID != customer.ID {
			return nil, NewValidationError("time_entry_ids",
				fmt.Sprintf("entry %s belongs to a different customer", entry.ID))
		}
		if entry.IsInvoiced {
			return nil, NewValidationError("time_entry_ids",
				fmt.Sprintf("entry %s is already invoiced", entry.ID))
		}
		if !entry.IsBillable {
			return nil, NewValidationError("time_entry_ids",
				fmt.Sprintf("entry %s is not billable", entry.ID))
		}
	}

	period := entryPeriod(entries)
	subtotal := billing.Round2(billing.Subtotal(customer, entries))
	vatAmount := billing.Round2(subtotal * s.vatPercentage / 100)
	total := billing.Round2(subtotal + vatAmount)

	lastNumber, err := s.invoices.LatestInvoiceNumber(userID)
	if err != nil {
		return nil, NewStoreError("get latest invoice number", err)
	}

	now := time.Now().UTC()
	notes := billing.InvoiceNotes(period)
	invoice := &models.Invoice{
		UserID:        userID,
		CustomerID:    customer.ID,
		InvoiceNumber: billing.NextInvoiceNumber(lastNumber, now.Year()),
		InvoiceDate:   now,
		DueDate:       billing.DueDate(now, customer),
		Status:        models.InvoiceStatusDraft,
		Subtotal:      subtotal,
		VATPercentage: s.vatPercentage,
		VATAmount:     vatAmount,
		TotalAmount:   total,
		Notes:         &notes,
	}

	created, err := s.invoices.Create(invoice)
	if err != nil {
		return nil, NewStoreError("create invoice", err)
	}

	for _, draft := range billing.BuildLineItems(customer, entries, detailLevel, period) {
		item := &models.InvoiceLineItem{
			Description:  draft.Description,
			Quantity:     draft.Quantity,
			Rate:         draft.Rate,
			Amount:       draft.Amount,
			TimeEntryIDs: draft.TimeEntryIDs,
		}
		if _, err := s.invoices.AddLineItem(created.ID, item); err != nil {
			s.rollbackCreate(userID, created.ID, nil)
			return nil, NewStoreError("create invoice line item", err)
		}
	}

	var marked []string
	for _, entry := range entries {
		err := s.entries.MarkInvoiced(userID, entry.ID, created.ID)
		if errors.Is(err, sql.ErrNoRows) {
			s.rollbackCreate(userID, created.ID, marked)
			return nil, NewValidationError("time_entry_ids",
				fmt.Sprintf("entry %s was invoiced concurrently", entry.ID))
		}
		if err != nil {
			s.rollbackCreate(userID, created.ID, marked)
			return nil, NewStoreError("mark time entry invoiced", err)
		}
		marked = append(marked, entry.ID)
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", created.ID),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("customer_id", customer.ID),
		zap.Int("entry_count", len(entries)),
		zap.Float64("total_amount", total))

	return s.Get(userID, created.ID)
}

// rollbackCreate undoes a partially created invoice: already-marked entries
// are reset, then the invoice row is removed. Failures here are logged only;
// the caller is already returning the original error.
func (s *InvoiceService) rollbackCreate(userID, invoiceID string, marked []string) {
	for _, entryID := range marked {
		if err := s.entries.ResetInvoiced(userID, entryID); err != nil {
			s.logger.Error("Failed to reset entry during rollback",
				zap.Error(err),
				zap.String("entry_id", entryID),
				zap.String("invoice_id", invoiceID))
		}
	}
	if err := s.invoices.Delete(userID, invoiceID); err != nil {
		s.logger.Error("Failed to delete invoice during rollback",
			zap.Error(err),
			zap.String("invoice_id", invoiceID))
	}
}

func (s *InvoiceService) Get(userID, id string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("invoice", id)
	}
	if err != nil {
		return nil, NewStoreError("get invoice", err)
	}
	return invoice, nil
}

func (s *InvoiceService) List(userID string) ([]*models.Invoice, error) {
	invoices, err := s.invoices.ListByUser(userID)
	if err != nil {
		return nil, NewStoreError("list invoices", err)
	}
	return invoices, nil
}

// Send transitions a draft invoice to sent and dispatches the invoice email.
// Email failures never fail the transition; the payload lands in the outbox
// for a later retry.
func (s *InvoiceService) Send(userID, id string) (*models.Invoice, error) {
	invoice, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusDraft:
		// ok
	case models.InvoiceStatusSent:
		return nil, NewValidationError("status", "invoice has already been sent")
	default:
		return nil, NewValidationError("status",
			fmt.Sprintf("cannot send a %s invoice", invoice.Status))
	}

	now := time.Now().UTC()
	if err := s.invoices.UpdateStatus(userID, id, models.InvoiceStatusSent, &now, nil); err != nil {
		return nil, NewStoreError("update invoice status", err)
	}

	s.dispatchEmail(userID, invoice)

	s.logger.Info("Invoice sent",
		zap.String("invoice_id", id),
		zap.String("invoice_number", invoice.InvoiceNumber))
	return s.Get(userID, id)
}

func (s *InvoiceService) dispatchEmail(userID string, invoice *models.Invoice) {
	customer, err := s.customers.GetByID(userID, invoice.CustomerID)
	if err != nil {
		s.logger.Warn("Skipping invoice email, customer lookup failed",
			zap.Error(err), zap.String("invoice_id", invoice.ID))
		return
	}
	if customer.Email == nil || *customer.Email == "" {
		s.logger.Warn("Skipping invoice email, customer has no email address",
			zap.String("invoice_id", invoice.ID),
			zap.String("customer_id", customer.ID))
		return
	}

	currency := s.defaultCurrency
	if profile, err := s.profiles.GetOrDefault(userID, s.defaultCurrency); err == nil {
		currency = profile.Currency
	}

	email := &mailer.InvoiceEmail{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		To:            *customer.Email,
		CompanyName:   customer.CompanyName,
		TotalAmount:   invoice.TotalAmount,
		TotalDisplay:  billing.FormatCurrency(invoice.TotalAmount, currency),
		Currency:      currency,
		DueDate:       invoice.DueDate.Format("2006-01-02"),
	}
	if invoice.Notes != nil {
		email.Notes = *invoice.Notes
	}

	if !s.mail.Enabled() {
		if err := s.outbox.Enqueue(invoice.ID, userID, email); err != nil {
			s.logger.Error("Failed to queue invoice email", zap.Error(err),
				zap.String("invoice_id", invoice.ID))
		}
		return
	}

	if err := s.mail.Send(email); err != nil {
		s.logger.Warn("Invoice email failed, queueing for retry",
			zap.Error(err), zap.String("invoice_id", invoice.ID))
		if err := s.outbox.Enqueue(invoice.ID, userID, email); err != nil {
			s.logger.Error("Failed to queue invoice email", zap.Error(err),
				zap.String("invoice_id", invoice.ID))
		}
	}
}

// MarkPaid transitions a sent invoice to paid.
func (s *InvoiceService) MarkPaid(userID, id string) (*models.Invoice, error) {
	invoice, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusSent:
		// ok
	case models.InvoiceStatusPaid:
		return nil, NewValidationError("status", "invoice is already paid")
	default:
		return nil, NewValidationError("status",
			fmt.Sprintf("cannot mark a %s invoice as paid", invoice.Status))
	}

	now := time.Now().UTC()
	if err := s.invoices.UpdateStatus(userID, id, models.InvoiceStatusPaid, nil, &now); err != nil {
		return nil, NewStoreError("update invoice status", err)
	}

	s.logger.Info("Invoice paid",
		zap.String("invoice_id", id),
		zap.String("invoice_number", invoice.InvoiceNumber))
	return s.Get(userID, id)
}

// Cancel voids a draft or sent invoice. Paid invoices are immutable.
func (s *InvoiceService) Cancel(userID, id string) (*models.Invoice, error) {
	invoice, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusDraft, models.InvoiceStatusSent:
		// ok
	default:
		return nil, NewValidationError("status",
			fmt.Sprintf("cannot cancel a %s invoice", invoice.Status))
	}

	if err := s.invoices.UpdateStatus(userID, id, models.InvoiceStatusCancelled, nil, nil); err != nil {
		return nil, NewStoreError("update invoice status", err)
	}

	s.logger.Info("Invoice cancelled", zap.String("invoice_id", id))
	return s.Get(userID, id)
}

// Delete removes an unpaid invoice and returns its entries to the uninvoiced
// pool. Entry resets are best effort: a failed reset is logged and reported
// but does not resurrect the deleted invoice.
func (s *InvoiceService) Delete(userID, id string) error {
	invoice, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return NewValidationError("status", "paid invoices cannot be deleted")
	}

	entryIDs := make(map[string]struct{})
	for _, item := range invoice.LineItems {
		for _, entryID := range item.TimeEntryIDs {
			entryIDs[entryID] = struct{}{}
		}
	}

	if err := s.invoices.Delete(userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFoundError("invoice", id)
		}
		return NewStoreError("delete invoice", err)
	}

	pf := &PartialFailure{Op: "delete invoice"}
	for entryID := range entryIDs {
		if err := s.entries.ResetInvoiced(userID, entryID); err != nil {
			pf.Add(fmt.Errorf("reset entry %s: %w", entryID, err))
		}
	}
	if pf.Len() > 0 {
		s.logger.Warn("Invoice deleted with entry reset failures",
			zap.String("invoice_id", id),
			zap.Int("failed", pf.Len()),
			zap.Error(pf))
	} else {
		s.logger.Info("Invoice deleted",
			zap.String("invoice_id", id),
			zap.Int("entries_reset", len(entryIDs)))
	}
	return nil
}

// entryPeriod is the span covered by the selected entries.
func entryPeriod(entries []*models.TimeEntry) billing.Range {
	period := billing.Range{Start: entries[0].StartTime, End: entries[0].EndTime}
	for _, entry := range entries[1:] {
		if entry.StartTime.Before(period.Start) {
			period.Start = entry.StartTime
		}
		if entry.EndTime.After(period.End) {
			period.End = entry.EndTime
		}
	}
	return period
}
