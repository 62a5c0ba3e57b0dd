package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"timebill/internal/handler"
)

func New(
	timeEntries *handler.TimeEntryHandler,
	customers *handler.CustomerHandler,
	invoices *handler.InvoiceHandler,
	analytics *handler.AnalyticsHandler,
	catalog *handler.CatalogHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/time-entries", func(r chi.Router) {
			r.Post("/", timeEntries.Create)
			r.Get("/", timeEntries.List)
			r.Get("/{id}", timeEntries.Get)
			r.Put("/{id}", timeEntries.Update)
			r.Delete("/{id}", timeEntries.Delete)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customers.Create)
			r.Get("/", customers.List)
			r.Get("/{id}", customers.Get)
			r.Put("/{id}", customers.Update)
			r.Delete("/{id}", customers.Delete)
			r.Get("/{id}/tasks", catalog.ListCustomerTasks)
			r.Get("/{id}/agreements", catalog.ListCustomerAgreements)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", catalog.CreateTask)
			r.Delete("/{id}", catalog.DeleteTask)
		})

		r.Route("/agreements", func(r chi.Router) {
			r.Post("/", catalog.CreateAgreement)
			r.Delete("/{id}", catalog.DeleteAgreement)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", catalog.CreateExpense)
			r.Get("/", catalog.ListExpenses)
			r.Delete("/{id}", catalog.DeleteExpense)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", invoices.Create)
			r.Get("/", invoices.List)
			r.Get("/{id}", invoices.Get)
			r.Delete("/{id}", invoices.Delete)
			r.Post("/{id}/send", invoices.Send)
			r.Post("/{id}/pay", invoices.MarkPaid)
			r.Post("/{id}/cancel", invoices.Cancel)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/", analytics.Report)
			r.Get("/export", analytics.Export)
		})

		r.Get("/profile", catalog.GetProfile)
		r.Put("/profile", catalog.UpdateProfile)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
