package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/starfederation/datastar-go/datastar"

	"shopee-dashboard/internal/models"
	"shopee-dashboard/internal/services"
)

const maxStateRows = 50

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

var summaryTemplate = template.Must(template.New("summary").Funcs(templateFuncs).Parse(`
<div id="summary-content" class="metrics">
{{with .Summary}}
<div class="metric"><span>Total Orders</span><strong>{{.TotalOrders}}</strong></div>
<div class="metric"><span>Total Revenue</span><strong>{{money .TotalRevenue}}</strong></div>
<div class="metric"><span>Average Recency (days)</span><strong>{{printf "%.1f" .MeanRecency}}</strong></div>
<div class="metric"><span>Average Frequency</span><strong>{{printf "%.2f" .MeanFrequency}}</strong></div>
<div class="metric"><span>Average Monetary</span><strong>{{money .MeanMonetary}}</strong></div>
{{else}}
<div class="metric-error">{{with .SummaryError}}{{.Message}}{{else}}No data{{end}}</div>
{{end}}
</div>`))

var stateTableTemplate = template.Must(template.New("stateTable").Parse(`
<div id="state-content">
<table class="modern-table">
<thead><tr><th>State</th><th>Customers</th></tr></thead>
<tbody>
{{range .}}<tr{{if .IsMax}} class="is-max"{{end}}>
<td>{{.State}}</td>
<td>{{.CustomerCount}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var errorTemplate = template.Must(template.New("error").Parse(
	`<div id="dashboard-error" class="error-banner">{{.}}</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderSummary(d *services.Dashboard) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, d)
	return buf.String(), err
}

func (h *SSEHandlers) renderStateTable(rows []models.StateBreakdown) (string, error) {
	if len(rows) > maxStateRows {
		rows = rows[:maxStateRows]
	}
	var buf strings.Builder
	err := stateTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

// dashboard loads the dashboard for the request range. On failure it
// patches an error banner into the page and returns nil.
func (h *SSEHandlers) dashboard(sse *datastar.ServerSentEventGenerator, r *http.Request) *services.Dashboard {
	rng, err := rangeFromRequest(r)
	if err == nil {
		var d *services.Dashboard
		if d, err = h.analytics.Dashboard(r.Context(), rng); err == nil {
			return d
		}
	}

	h.logger.Warn("dashboard unavailable", "error", err)
	var buf strings.Builder
	if execErr := errorTemplate.Execute(&buf, err.Error()); execErr != nil {
		h.logger.Error("render error banner", "error", execErr)
		return nil
	}
	if patchErr := sse.PatchElements(buf.String()); patchErr != nil {
		h.logger.Error("patch error banner", "error", patchErr)
	}
	return nil
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) bool {
	if err := sse.MarshalAndPatchSignals(signals); err != nil {
		h.logger.Error("patch signals", "error", err)
		return false
	}
	return true
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleDailyOrders(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	d := h.dashboard(sse, r)
	if d == nil {
		return
	}
	if h.patchSignals(sse, map[string]any{"dailyOrders": d.DailyOrders}) {
		sse.PatchElements(`<div id="daily-content">✅ Daily orders loaded</div>`)
	}
	flush(w)
}

func (h *SSEHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	d := h.dashboard(sse, r)
	if d == nil {
		return
	}
	if h.patchSignals(sse, map[string]any{
		"bestProducts":  d.BestProducts,
		"worstProducts": d.WorstProducts,
	}) {
		sse.PatchElements(`<div id="products-content">✅ Product ranking loaded</div>`)
	}
	flush(w)
}

func (h *SSEHandlers) HandleDemographics(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	d := h.dashboard(sse, r)
	if d == nil {
		return
	}
	html, err := h.renderStateTable(d.State)
	if err != nil {
		h.logger.Error("render state table", "error", err)
		return
	}
	if h.patchSignals(sse, map[string]any{
		"genderData": d.Gender,
		"ageData":    d.Age,
		"stateData":  d.State,
	}) {
		sse.PatchElements(html)
	}
	flush(w)
}

func (h *SSEHandlers) HandleRFM(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	d := h.dashboard(sse, r)
	if d == nil {
		return
	}
	html, err := h.renderSummary(d)
	if err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}
	sse.PatchElements(html)
	h.patchSignals(sse, map[string]any{"topCustomers": d.TopCustomers})
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	d := h.dashboard(sse, r)
	if d == nil {
		return
	}

	summaryHTML, err := h.renderSummary(d)
	if err != nil {
		h.logger.Error("render summary", "error", err)
		return
	}
	stateHTML, err := h.renderStateTable(d.State)
	if err != nil {
		h.logger.Error("render state table", "error", err)
		return
	}
	sse.PatchElements(summaryHTML)
	sse.PatchElements(stateHTML)

	// Send all signals in one call
	h.patchSignals(sse, map[string]any{
		"start":         d.Range.Start.String(),
		"end":           d.Range.End.String(),
		"dailyOrders":   d.DailyOrders,
		"bestProducts":  d.BestProducts,
		"worstProducts": d.WorstProducts,
		"genderData":    d.Gender,
		"ageData":       d.Age,
		"stateData":     d.State,
		"topCustomers":  d.TopCustomers,
	})
	flush(w)
}
