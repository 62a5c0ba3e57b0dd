package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"timebill/internal/models"
	"timebill/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service *service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AnalyticsHandler) periodParams(w http.ResponseWriter, r *http.Request) (models.TimePeriod, *time.Time, *time.Time, bool) {
	period := models.TimePeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = models.PeriodMonth
	}

	var start, end *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := parseTimeParam(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "start"})
			return "", nil, nil, false
		}
		start = &t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := parseTimeParam(e)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "end"})
			return "", nil, nil, false
		}
		end = &t
	}
	return period, start, end, true
}

func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	period, start, end, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	report, err := h.service.Report(uid, period, start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Export streams the per-client profitability table as a CSV download.
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	period, start, end, ok := h.periodParams(w, r)
	if !ok {
		return
	}

	data, err := h.service.ExportCSV(uid, period, start, end)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename := "client-report-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
