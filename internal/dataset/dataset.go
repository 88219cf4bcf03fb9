// Package dataset ingests order-item exports and normalizes them into an
// immutable, date-ordered sequence of transaction rows.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/models"
)

// Dataset is a read-only, order-date-sorted view of the loaded rows.
type Dataset struct {
	rows []models.TransactionRow
}

// New copies rows into a Dataset sorted by order date. rows is not modified.
func New(rows []models.TransactionRow) *Dataset {
	return &Dataset{rows: SortByOrderDate(rows)}
}

// Rows returns the normalized rows. Callers must not modify the slice.
func (d *Dataset) Rows() []models.TransactionRow {
	return d.rows
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

// Bounds returns the earliest and latest order dates. ok is false when the
// dataset is empty.
func (d *Dataset) Bounds() (bounds models.DateBounds, ok bool) {
	if len(d.rows) == 0 {
		return models.DateBounds{}, false
	}
	return models.DateBounds{
		Min: d.rows[0].OrderDate,
		Max: d.rows[len(d.rows)-1].OrderDate,
	}, true
}

type Loader struct {
	policy InvalidRowPolicy
	logger *slog.Logger
}

func NewLoader(policy InvalidRowPolicy, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{policy: policy, logger: logger}
}

// LoadFile reads a .csv or .xlsx export and returns the normalized dataset.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Dataset, error) {
	start := time.Now()
	l.logger.Info("loading dataset", "path", path, "invalid_rows", l.policy.String())

	records, err := l.readRecords(path)
	if err != nil {
		return nil, err
	}

	ds, err := l.fromRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	l.logger.Info("dataset loaded",
		"path", path,
		"rows", ds.Len(),
		"duration", time.Since(start),
	)
	return ds, nil
}

// Load parses CSV content from r.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Dataset, error) {
	records, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return l.fromRecords(ctx, records)
}

func (l *Loader) readRecords(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer file.Close()
		return ReadCSV(file)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, apperrors.Parse(0, "", fmt.Errorf("unsupported dataset format %q", filepath.Ext(path)))
	}
}

func (l *Loader) fromRecords(ctx context.Context, records [][]string) (*Dataset, error) {
	result, err := ParseRecords(ctx, records, l.policy)
	if err != nil {
		return nil, err
	}
	if result.Dropped > 0 {
		l.logger.Warn("dropped unparseable rows",
			"dropped", result.Dropped,
			"first_error", result.FirstDrop,
		)
	}
	if len(result.Rows) == 0 {
		return nil, apperrors.EmptyDataset("dataset has no valid rows")
	}
	return New(result.Rows), nil
}
