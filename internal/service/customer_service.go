package service

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"timebill/internal/models"
)

type customerStore interface {
	Create(userID string, req *models.CreateCustomerRequest) (*models.Customer, error)
	GetByID(userID, id string) (*models.Customer, error)
	ListActive(userID string) ([]*models.Customer, error)
	Update(userID, id string, update *models.UpdateCustomerRequest) (*models.Customer, error)
	Deactivate(userID, id string) error
}

type CustomerService struct {
	customers customerStore
	logger    *zap.Logger
}

func NewCustomerService(customers customerStore, logger *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, logger: logger}
}

func (s *CustomerService) Create(userID string, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if req.CompanyName == "" {
		return nil, NewValidationError("company_name", "company name is required")
	}
	if !req.RateType.Valid() {
		return nil, NewValidationError("rate_type", "rate type must be hourly or monthly")
	}
	if req.DefaultRate < 0 {
		return nil, NewValidationError("default_rate", "rate cannot be negative")
	}
	if req.PaymentTerms != nil && *req.PaymentTerms <= 0 {
		return nil, NewValidationError("payment_terms", "payment terms must be positive")
	}

	customer, err := s.customers.Create(userID, req)
	if err != nil {
		return nil, NewStoreError("create customer", err)
	}

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID),
		zap.String("rate_type", string(customer.RateType)))
	return customer, nil
}

func (s *CustomerService) Get(userID, id string) (*models.Customer, error) {
	customer, err := s.customers.GetByID(userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("customer", id)
	}
	if err != nil {
		return nil, NewStoreError("get customer", err)
	}
	return customer, nil
}

func (s *CustomerService) List(userID string) ([]*models.Customer, error) {
	customers, err := s.customers.ListActive(userID)
	if err != nil {
		return nil, NewStoreError("list customers", err)
	}
	return customers, nil
}

func (s *CustomerService) Update(userID, id string, update *models.UpdateCustomerRequest) (*models.Customer, error) {
	if update.RateType != nil && !update.RateType.Valid() {
		return nil, NewValidationError("rate_type", "rate type must be hourly or monthly")
	}
	if update.DefaultRate != nil && *update.DefaultRate < 0 {
		return nil, NewValidationError("default_rate", "rate cannot be negative")
	}
	if update.PaymentTerms != nil && *update.PaymentTerms <= 0 {
		return nil, NewValidationError("payment_terms", "payment terms must be positive")
	}

	customer, err := s.customers.Update(userID, id, update)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("customer", id)
	}
	if err != nil {
		return nil, NewStoreError("update customer", err)
	}
	return customer, nil
}

func (s *CustomerService) Deactivate(userID, id string) error {
	err := s.customers.Deactivate(userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFoundError("customer", id)
	}
	if err != nil {
		return NewStoreError("deactivate customer", err)
	}
	s.logger.Info("Customer deactivated", zap.String("customer_id", id))
	return nil
}
