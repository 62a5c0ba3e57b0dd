package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timebill/internal/models"
)

type fakeTimeEntryStore struct {
	entries map[string]*models.TimeEntry
}

func newFakeTimeEntryStore(entries ...*models.TimeEntry) *fakeTimeEntryStore {
	f := &fakeTimeEntryStore{entries: make(map[string]*models.TimeEntry)}
	for _, e := range entries {
		f.entries[e.ID] = e
	}
	return f
}

func (f *fakeTimeEntryStore) Create(userID string, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{
		ID:              "e-created",
		UserID:          userID,
		CustomerID:      req.CustomerID,
		TaskID:          req.TaskID,
		Subtask:         req.Subtask,
		TaskDescription: req.TaskDescription,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: int(req.EndTime.Sub(req.StartTime).Minutes()),
		IsBillable:      req.IsBillable,
		DriveRequired:   req.DriveRequired,
		Kilometers:      req.Kilometers,
	}
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeTimeEntryStore) GetByID(userID, id string) (*models.TimeEntry, error) {
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (f *fakeTimeEntryStore) ListRange(userID string, start, end *time.Time) ([]*models.TimeEntry, error) {
	var out []*models.TimeEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTimeEntryStore) Update(userID, id string, update *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	e, err := f.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if update.StartTime != nil {
		e.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		e.EndTime = *update.EndTime
	}
	if update.StartTime != nil || update.EndTime != nil {
		e.DurationMinutes = int(e.EndTime.Sub(e.StartTime).Minutes())
	}
	if update.IsBillable != nil {
		e.IsBillable = *update.IsBillable
	}
	if update.DriveRequired != nil {
		e.DriveRequired = *update.DriveRequired
	}
	if update.Kilometers != nil {
		e.Kilometers = update.Kilometers
	}
	return e, nil
}

func (f *fakeTimeEntryStore) Delete(userID, id string) error {
	if _, err := f.GetByID(userID, id); err != nil {
		return err
	}
	delete(f.entries, id)
	return nil
}

type fakeTaskStore struct {
	tasks map[string]*models.Task
}

func (f *fakeTaskStore) GetByID(userID, id string) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func newTimeEntryService(store *fakeTimeEntryStore, customer *models.Customer, tasks map[string]*models.Task) *TimeEntryService {
	customers := &fakeCustomerStore{customers: map[string]*models.Customer{}}
	if customer != nil {
		customers.customers[customer.ID] = customer
	}
	return NewTimeEntryService(store, customers, &fakeTaskStore{tasks: tasks}, zap.NewNop())
}

func validCreateRequest() *models.CreateTimeEntryRequest {
	start := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	return &models.CreateTimeEntryRequest{
		CustomerID: "c1",
		StartTime:  start,
		EndTime:    start.Add(90 * time.Minute),
		IsBillable: true,
	}
}

func TestCreateTimeEntry(t *testing.T) {
	store := newFakeTimeEntryStore()
	svc := newTimeEntryService(store, hourlyTestCustomer(), nil)

	entry, err := svc.Create(testUser, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 90, entry.DurationMinutes)
	assert.Equal(t, 1.5, entry.Hours())
}

func TestCreateTimeEntryValidation(t *testing.T) {
	store := newFakeTimeEntryStore()
	inactive := hourlyTestCustomer()
	inactive.IsActive = false

	t.Run("end before start", func(t *testing.T) {
		svc := newTimeEntryService(store, hourlyTestCustomer(), nil)
		req := validCreateRequest()
		req.EndTime = req.StartTime.Add(-time.Hour)
		_, err := svc.Create(testUser, req)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("zero duration", func(t *testing.T) {
		svc := newTimeEntryService(store, hourlyTestCustomer(), nil)
		req := validCreateRequest()
		req.EndTime = req.StartTime
		_, err := svc.Create(testUser, req)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown customer", func(t *testing.T) {
		svc := newTimeEntryService(store, nil, nil)
		_, err := svc.Create(testUser, validCreateRequest())
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("inactive customer", func(t *testing.T) {
		svc := newTimeEntryService(store, inactive, nil)
		_, err := svc.Create(testUser, validCreateRequest())
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("kilometers without drive", func(t *testing.T) {
		svc := newTimeEntryService(store, hourlyTestCustomer(), nil)
		req := validCreateRequest()
		km := 25.0
		req.Kilometers = &km
		_, err := svc.Create(testUser, req)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "kilometers", validationErr.Field)

		req.DriveRequired = true
		_, err = svc.Create(testUser, req)
		assert.NoError(t, err)
	})

	t.Run("negative kilometers", func(t *testing.T) {
		svc := newTimeEntryService(store, hourlyTestCustomer(), nil)
		req := validCreateRequest()
		km := -5.0
		req.Kilometers = &km
		req.DriveRequired = true
		_, err := svc.Create(testUser, req)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("task of another customer", func(t *testing.T) {
		tasks := map[string]*models.Task{
			"t1": {ID: "t1", CustomerID: "other", Name: "Misfiled"},
		}
		svc := newTimeEntryService(store, hourlyTestCustomer(), tasks)
		req := validCreateRequest()
		taskID := "t1"
		req.TaskID = &taskID
		_, err := svc.Create(testUser, req)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "task_id", validationErr.Field)
	})
}

func TestUpdateTimeEntryRecomputesDuration(t *testing.T) {
	entry := billableEntry("e1", 60, "c1")
	store := newFakeTimeEntryStore(entry)
	svc := newTimeEntryService(store, hourlyTestCustomer(), nil)

	newEnd := entry.StartTime.Add(2 * time.Hour)
	updated, err := svc.Update(testUser, "e1", &models.UpdateTimeEntryRequest{EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, 120, updated.DurationMinutes)
}

func TestUpdateTimeEntryInvalidRange(t *testing.T) {
	entry := billableEntry("e1", 60, "c1")
	store := newFakeTimeEntryStore(entry)
	svc := newTimeEntryService(store, hourlyTestCustomer(), nil)

	badEnd := entry.StartTime.Add(-time.Minute)
	_, err := svc.Update(testUser, "e1", &models.UpdateTimeEntryRequest{EndTime: &badEnd})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestInvoicedEntryIsLocked(t *testing.T) {
	entry := billableEntry("e1", 60, "c1")
	entry.IsInvoiced = true
	store := newFakeTimeEntryStore(entry)
	svc := newTimeEntryService(store, hourlyTestCustomer(), nil)

	billable := false
	_, err := svc.Update(testUser, "e1", &models.UpdateTimeEntryRequest{IsBillable: &billable})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	err = svc.Delete(testUser, "e1")
	assert.ErrorAs(t, err, &validationErr)
	_, stillThere := store.entries["e1"]
	assert.True(t, stillThere)
}

func TestGetTimeEntryNotFound(t *testing.T) {
	svc := newTimeEntryService(newFakeTimeEntryStore(), hourlyTestCustomer(), nil)
	_, err := svc.Get(testUser, "ghost")
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestDeleteTimeEntry(t *testing.T) {
	entry := billableEntry("e1", 60, "c1")
	store := newFakeTimeEntryStore(entry)
	svc := newTimeEntryService(store, hourlyTestCustomer(), nil)

	require.NoError(t, svc.Delete(testUser, "e1"))
	assert.Empty(t, store.entries)
}

func TestListTimeEntriesRangeValidation(t *testing.T) {
	svc := newTimeEntryService(newFakeTimeEntryStore(), hourlyTestCustomer(), nil)
	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.List(testUser, &start, &end)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
