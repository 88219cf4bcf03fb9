package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"shopee-dashboard/internal/analytics"
	"shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/observability"
	"shopee-dashboard/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// withReport parses the requested range, runs the pipeline and hands the
// result to write.
func (h *APIHandlers) withReport(write func(w http.ResponseWriter, report *analytics.Report)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rng, err := rangeFromRequest(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		report, err := h.analytics.Report(r.Context(), rng)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		write(w, report)
	}
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	data, err := h.analytics.Dashboard(r.Context(), rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleDailyOrders(w http.ResponseWriter, r *http.Request) {
	h.withReport(func(w http.ResponseWriter, report *analytics.Report) {
		errors.WriteSuccessWithHeaders(w, report.DailyOrders, cacheHeaders)
	})(w, r)
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	n := h.analytics.TopN()
	h.withReport(func(w http.ResponseWriter, report *analytics.Report) {
		errors.WriteSuccessWithHeaders(w, map[string]any{
			"products": report.ProductSales,
			"best":     report.BestProducts(n),
			"worst":    report.WorstProducts(n),
		}, cacheHeaders)
	})(w, r)
}

func (h *APIHandlers) HandleGender(w http.ResponseWriter, r *http.Request) {
	h.withReport(func(w http.ResponseWriter, report *analytics.Report) {
		errors.WriteSuccessWithHeaders(w, report.Gender, cacheHeaders)
	})(w, r)
}

func (h *APIHandlers) HandleAge(w http.ResponseWriter, r *http.Request) {
	h.withReport(func(w http.ResponseWriter, report *analytics.Report) {
		errors.WriteSuccessWithHeaders(w, report.Age, cacheHeaders)
	})(w, r)
}

func (h *APIHandlers) HandleState(w http.ResponseWriter, r *http.Request) {
	h.withReport(func(w http.ResponseWriter, report *analytics.Report) {
		errors.WriteSuccessWithHeaders(w, report.State, cacheHeaders)
	})(w, r)
}

func (h *APIHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	n := h.analytics.TopN()
	h.withReport(func(w http.ResponseWriter, report *analytics.Report) {
		errors.WriteSuccessWithHeaders(w, map[string]any{
			"customers": report.RFM,
			"top":       report.TopCustomers(n),
		}, cacheHeaders)
	})(w, r)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := h.analytics.Report(r.Context(), rng)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := report.Summary()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, summary, cacheHeaders)
}

func (h *APIHandlers) HandleBounds(w http.ResponseWriter, r *http.Request) {
	bounds, err := h.analytics.Bounds()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, bounds)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
