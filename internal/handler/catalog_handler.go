package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"timebill/internal/models"
	"timebill/internal/repository"
)

// CatalogHandler serves the supporting resources around billing: tasks,
// agreements, expenses and the business profile. These are thin CRUD
// surfaces, so the handler talks to the repositories directly.
type CatalogHandler struct {
	tasks      *repository.TaskRepository
	agreements *repository.AgreementRepository
	expenses   *repository.ExpenseRepository
	profiles   *repository.ProfileRepository
	logger     *zap.Logger
}

func NewCatalogHandler(
	tasks *repository.TaskRepository,
	agreements *repository.AgreementRepository,
	expenses *repository.ExpenseRepository,
	profiles *repository.ProfileRepository,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		tasks:      tasks,
		agreements: agreements,
		expenses:   expenses,
		profiles:   profiles,
		logger:     logger,
	}
}

func (h *CatalogHandler) writeStoreError(w http.ResponseWriter, err error, resource string) {
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: resource + " not found"})
		return
	}
	h.logger.Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func (h *CatalogHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.CustomerID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "customer_id and name are required"})
		return
	}

	task, err := h.tasks.Create(uid, &req)
	if err != nil {
		h.writeStoreError(w, err, "task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *CatalogHandler) ListCustomerTasks(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListByCustomer(uid, chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "task")
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *CatalogHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Deactivate(uid, chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.CreateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.CustomerID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "customer_id and name are required"})
		return
	}
	if !req.ContractType.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "contract type must be hourly or monthly", Field: "contract_type"})
		return
	}

	agreement, err := h.agreements.Create(uid, &req)
	if err != nil {
		h.writeStoreError(w, err, "agreement")
		return
	}
	writeJSON(w, http.StatusCreated, agreement)
}

func (h *CatalogHandler) ListCustomerAgreements(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	agreements, err := h.agreements.ListByCustomer(uid, chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "agreement")
		return
	}
	if agreements == nil {
		agreements = []*models.Agreement{}
	}
	writeJSON(w, http.StatusOK, agreements)
}

func (h *CatalogHandler) DeleteAgreement(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.agreements.Deactivate(uid, chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "agreement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req models.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required", Field: "name"})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "amount must be positive", Field: "amount"})
		return
	}
	if !req.ExpenseType.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expense type must be one-off or monthly", Field: "expense_type"})
		return
	}

	expense, err := h.expenses.Create(uid, &req)
	if err != nil {
		h.writeStoreError(w, err, "expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *CatalogHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	// Default to the current calendar month.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if s := r.URL.Query().Get("start"); s != "" {
		t, err := parseTimeParam(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "start"})
			return
		}
		start = t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := parseTimeParam(e)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "end"})
			return
		}
		end = t
	}

	expenses, err := h.expenses.ListInRange(uid, start, end)
	if err != nil {
		h.writeStoreError(w, err, "expense")
		return
	}
	if expenses == nil {
		expenses = []*models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *CatalogHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.expenses.Deactivate(uid, chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetOrDefault(uid, "USD")
	if err != nil {
		h.writeStoreError(w, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateProfileBody struct {
	Email string `json:"email"`
	models.UpdateProfileRequest
}

// UpdateProfile upserts the profile row, then applies the field updates.
func (h *CatalogHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var body updateProfileBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if body.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required", Field: "email"})
		return
	}
	if body.InternalHourlyRate != nil && *body.InternalHourlyRate < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "internal hourly rate cannot be negative", Field: "internal_hourly_rate"})
		return
	}

	if _, err := h.profiles.Upsert(uid, body.Email); err != nil {
		h.writeStoreError(w, err, "profile")
		return
	}
	profile, err := h.profiles.Update(uid, &body.UpdateProfileRequest)
	if err != nil {
		h.writeStoreError(w, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
