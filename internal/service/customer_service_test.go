package service

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timebill/internal/models"
)

type fakeFullCustomerStore struct {
	customers map[string]*models.Customer
}

func newFakeFullCustomerStore() *fakeFullCustomerStore {
	return &fakeFullCustomerStore{customers: make(map[string]*models.Customer)}
}

func (f *fakeFullCustomerStore) Create(userID string, req *models.CreateCustomerRequest) (*models.Customer, error) {
	terms := models.DefaultPaymentTermsDays
	if req.PaymentTerms != nil {
		terms = *req.PaymentTerms
	}
	c := &models.Customer{
		ID:           "c-created",
		UserID:       userID,
		CompanyName:  req.CompanyName,
		DefaultRate:  req.DefaultRate,
		RateType:     req.RateType,
		PaymentTerms: terms,
		IsInternal:   req.IsInternal,
		IsActive:     true,
	}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeFullCustomerStore) GetByID(userID, id string) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeFullCustomerStore) ListActive(userID string) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range f.customers {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeFullCustomerStore) Update(userID, id string, update *models.UpdateCustomerRequest) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if update.DefaultRate != nil {
		c.DefaultRate = *update.DefaultRate
	}
	if update.RateType != nil {
		c.RateType = *update.RateType
	}
	return c, nil
}

func (f *fakeFullCustomerStore) Deactivate(userID, id string) error {
	c, ok := f.customers[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.IsActive = false
	return nil
}

func TestCustomerCreate(t *testing.T) {
	svc := NewCustomerService(newFakeFullCustomerStore(), zap.NewNop())

	customer, err := svc.Create(testUser, &models.CreateCustomerRequest{
		CompanyName: "Acme",
		DefaultRate: 100,
		RateType:    models.RateTypeHourly,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPaymentTermsDays, customer.PaymentTerms)
	assert.True(t, customer.IsActive)
}

func TestCustomerCreateValidation(t *testing.T) {
	svc := NewCustomerService(newFakeFullCustomerStore(), zap.NewNop())
	zero := 0

	cases := []struct {
		name string
		req  *models.CreateCustomerRequest
	}{
		{"missing name", &models.CreateCustomerRequest{RateType: models.RateTypeHourly}},
		{"bad rate type", &models.CreateCustomerRequest{CompanyName: "Acme", RateType: "weekly"}},
		{"negative rate", &models.CreateCustomerRequest{CompanyName: "Acme", RateType: models.RateTypeHourly, DefaultRate: -1}},
		{"zero payment terms", &models.CreateCustomerRequest{CompanyName: "Acme", RateType: models.RateTypeHourly, PaymentTerms: &zero}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(testUser, tc.req)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestCustomerGetNotFound(t *testing.T) {
	svc := NewCustomerService(newFakeFullCustomerStore(), zap.NewNop())
	_, err := svc.Get(testUser, "ghost")
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestCustomerDeactivate(t *testing.T) {
	store := newFakeFullCustomerStore()
	svc := NewCustomerService(store, zap.NewNop())
	customer, err := svc.Create(testUser, &models.CreateCustomerRequest{
		CompanyName: "Acme",
		RateType:    models.RateTypeHourly,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(testUser, customer.ID))
	assert.False(t, store.customers[customer.ID].IsActive)
}
