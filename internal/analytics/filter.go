package analytics

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	apperrors "shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/models"
)

// DateRange is an inclusive [Start, End] interval of order dates.
type DateRange struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// NewDateRange validates the bounds. A zero date counts as a missing bound.
func NewDateRange(start, end civil.Date) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, apperrors.InvalidRange("both start and end dates are required")
	}
	if !start.IsValid() || !end.IsValid() {
		return DateRange{}, apperrors.InvalidRange(fmt.Sprintf("invalid date bound %s..%s", start, end))
	}
	if start.After(end) {
		return DateRange{}, apperrors.InvalidRange(fmt.Sprintf("start date %s is after end date %s", start, end))
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Filter returns a new slice holding the rows whose order date lies within
// [start, end]. The input is not modified.
func Filter(rows []models.TransactionRow, start, end civil.Date) ([]models.TransactionRow, error) {
	rng, err := NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return filterRange(rows, rng), nil
}

func filterRange(rows []models.TransactionRow, rng DateRange) []models.TransactionRow {
	return lo.Filter(rows, func(r models.TransactionRow, _ int) bool {
		return rng.Contains(r.OrderDate)
	})
}
