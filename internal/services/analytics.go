package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"shopee-dashboard/internal/analytics"
	"shopee-dashboard/internal/config"
	"shopee-dashboard/internal/dataset"
	apperrors "shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/models"
	"shopee-dashboard/internal/observability"
)

const (
	defaultTopN    = 5
	defaultTimeout = 5 * time.Second
)

// Dashboard is everything one dashboard render needs for a date range.
type Dashboard struct {
	Range         analytics.DateRange      `json:"range"`
	RowCount      int                      `json:"row_count"`
	Summary       *models.Summary          `json:"summary,omitempty"`
	SummaryError  *apperrors.AppError      `json:"summary_error,omitempty"`
	DailyOrders   []models.DailyOrders     `json:"daily_orders"`
	BestProducts  []models.ProductSales    `json:"best_products"`
	WorstProducts []models.ProductSales    `json:"worst_products"`
	Gender        []models.GenderBreakdown `json:"gender"`
	Age           []models.AgeBreakdown    `json:"age"`
	State         []models.StateBreakdown  `json:"state"`
	TopCustomers  analytics.TopCustomers   `json:"top_customers"`
}

type Analytics struct {
	mu       sync.RWMutex
	dataset  *dataset.Dataset
	source   string
	loadedAt time.Time

	cfg    config.AnalyticsConfig
	runs   atomic.Int64
	logger *slog.Logger
}

func NewAnalytics(cfg config.AnalyticsConfig, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Analytics{
		cfg:    cfg,
		logger: logger,
	}
}

// LoadFromFile replaces the served dataset with the contents of path.
func (a *Analytics) LoadFromFile(ctx context.Context, loader *dataset.Loader, path string) error {
	ds, err := loader.LoadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	a.setDataset(ds, path)
	return nil
}

// SetData serves rows directly, bypassing file ingestion.
func (a *Analytics) SetData(rows []models.TransactionRow) {
	a.setDataset(dataset.New(rows), "memory")
}

func (a *Analytics) setDataset(ds *dataset.Dataset, source string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset = ds
	a.source = source
	a.loadedAt = time.Now()
}

func (a *Analytics) current() (*dataset.Dataset, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.dataset == nil {
		return nil, apperrors.ServiceUnavailable("dataset not loaded")
	}
	return a.dataset, nil
}

func (a *Analytics) TopN() int {
	return a.cfg.TopN
}

// Bounds reports the first and last order dates of the served dataset.
func (a *Analytics) Bounds() (models.DateBounds, error) {
	ds, err := a.current()
	if err != nil {
		return models.DateBounds{}, err
	}
	bounds, ok := ds.Bounds()
	if !ok {
		return models.DateBounds{}, apperrors.EmptyDataset("dataset has no rows")
	}
	return bounds, nil
}

// Report runs the pipeline over rng, or over the full dataset when rng is nil.
func (a *Analytics) Report(ctx context.Context, rng *analytics.DateRange) (*analytics.Report, error) {
	ds, err := a.current()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "analytics.run")
	defer span.FinishAndLog(ctx, a.logger)
	if rng != nil {
		span.SetTag("range", rng.Start.String()+".."+rng.End.String())
	}

	report, err := analytics.Run(ctx, ds.Rows(), rng)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	a.runs.Add(1)
	span.SetTag("rows", strconv.Itoa(report.RowCount))
	return report, nil
}

// Dashboard assembles the derived tables and rankings for rng. A nil rng
// means the dataset's full date span. A summary that cannot be computed is
// reported in SummaryError rather than failing the whole render.
func (a *Analytics) Dashboard(ctx context.Context, rng *analytics.DateRange) (*Dashboard, error) {
	if rng == nil {
		bounds, err := a.Bounds()
		if err != nil {
			return nil, err
		}
		rng = &analytics.DateRange{Start: bounds.Min, End: bounds.Max}
	}

	report, err := a.Report(ctx, rng)
	if err != nil {
		return nil, err
	}

	n := a.cfg.TopN
	d := &Dashboard{
		Range:         *report.Range,
		RowCount:      report.RowCount,
		DailyOrders:   report.DailyOrders,
		BestProducts:  report.BestProducts(n),
		WorstProducts: report.WorstProducts(n),
		Gender:        report.Gender,
		Age:           report.Age,
		State:         report.State,
		TopCustomers:  report.TopCustomers(n),
	}

	summary, err := report.Summary()
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			return nil, err
		}
		d.SummaryError = appErr
	} else {
		d.Summary = &summary
	}
	return d, nil
}

// Stats is used for monitoring.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"loaded":        a.dataset != nil,
		"pipeline_runs": a.runs.Load(),
	}
	if a.dataset == nil {
		return stats
	}
	stats["source"] = a.source
	stats["loaded_at"] = a.loadedAt
	stats["record_count"] = a.dataset.Len()
	if bounds, ok := a.dataset.Bounds(); ok {
		stats["min_order_date"] = bounds.Min.String()
		stats["max_order_date"] = bounds.Max.String()
	}
	return stats
}
