package service

import (
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"timebill/internal/models"
)

type timeEntryStore interface {
	Create(userID string, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error)
	GetByID(userID, id string) (*models.TimeEntry, error)
	ListRange(userID string, start, end *time.Time) ([]*models.TimeEntry, error)
	Update(userID, id string, update *models.UpdateTimeEntryRequest) (*models.TimeEntry, error)
	Delete(userID, id string) error
}

type taskGetter interface {
	GetByID(userID, id string) (*models.Task, error)
}

type TimeEntryService struct {
	entries   timeEntryStore
	customers customerGetter
	tasks     taskGetter
	logger    *zap.Logger
}

func NewTimeEntryService(entries timeEntryStore, customers customerGetter, tasks taskGetter, logger *zap.Logger) *TimeEntryService {
	return &TimeEntryService{entries: entries, customers: customers, tasks: tasks, logger: logger}
}

func (s *TimeEntryService) Create(userID string, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	if req.CustomerID == "" {
		return nil, NewValidationError("customer_id", "customer is required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, NewValidationError("end_time", "end time must be after start time")
	}
	if err := validateDrive(req.DriveRequired, req.Kilometers); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(userID, req.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewValidationError("customer_id", "customer does not exist")
	}
	if err != nil {
		return nil, NewStoreError("get customer", err)
	}
	if !customer.IsActive {
		return nil, NewValidationError("customer_id", "customer is inactive")
	}

	if req.TaskID != nil {
		task, err := s.tasks.GetByID(userID, *req.TaskID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewValidationError("task_id", "task does not exist")
		}
		if err != nil {
			return nil, NewStoreError("get task", err)
		}
		if task.CustomerID != req.CustomerID {
			return nil, NewValidationError("task_id", "task belongs to a different customer")
		}
	}

	entry, err := s.entries.Create(userID, req)
	if err != nil {
		return nil, NewStoreError("create time entry", err)
	}

	s.logger.Info("Time entry created",
		zap.String("entry_id", entry.ID),
		zap.String("customer_id", entry.CustomerID),
		zap.Int("duration_minutes", entry.DurationMinutes))
	return entry, nil
}

func (s *TimeEntryService) Get(userID, id string) (*models.TimeEntry, error) {
	entry, err := s.entries.GetByID(userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("time entry", id)
	}
	if err != nil {
		return nil, NewStoreError("get time entry", err)
	}
	return entry, nil
}

// List returns entries with start times inside the optional bounds.
func (s *TimeEntryService) List(userID string, start, end *time.Time) ([]*models.TimeEntry, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, NewValidationError("end", "end date precedes start date")
	}
	entries, err := s.entries.ListRange(userID, start, end)
	if err != nil {
		return nil, NewStoreError("list time entries", err)
	}
	return entries, nil
}

// Update rejects edits to invoiced entries; their hours are already billed.
func (s *TimeEntryService) Update(userID, id string, update *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	current, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if current.IsInvoiced {
		return nil, NewValidationError("", "entry is invoiced and cannot be modified")
	}

	startTime := current.StartTime
	endTime := current.EndTime
	if update.StartTime != nil {
		startTime = *update.StartTime
	}
	if update.EndTime != nil {
		endTime = *update.EndTime
	}
	if !endTime.After(startTime) {
		return nil, NewValidationError("end_time", "end time must be after start time")
	}

	driveRequired := current.DriveRequired
	if update.DriveRequired != nil {
		driveRequired = *update.DriveRequired
	}
	kilometers := current.Kilometers
	if update.Kilometers != nil {
		kilometers = update.Kilometers
	}
	if err := validateDrive(driveRequired, kilometers); err != nil {
		return nil, err
	}

	entry, err := s.entries.Update(userID, id, update)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("time entry", id)
	}
	if err != nil {
		return nil, NewStoreError("update time entry", err)
	}
	return entry, nil
}

func (s *TimeEntryService) Delete(userID, id string) error {
	current, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	if current.IsInvoiced {
		return NewValidationError("", "entry is invoiced and cannot be deleted")
	}

	if err := s.entries.Delete(userID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFoundError("time entry", id)
		}
		return NewStoreError("delete time entry", err)
	}
	s.logger.Info("Time entry deleted", zap.String("entry_id", id))
	return nil
}

// validateDrive enforces that kilometers are only recorded on entries flagged
// as requiring a drive, and never negative.
func validateDrive(driveRequired bool, kilometers *float64) error {
	if kilometers != nil && *kilometers < 0 {
		return NewValidationError("kilometers", "kilometers cannot be negative")
	}
	if kilometers != nil && *kilometers > 0 && !driveRequired {
		return NewValidationError("kilometers", "kilometers require drive_required to be set")
	}
	return nil
}
