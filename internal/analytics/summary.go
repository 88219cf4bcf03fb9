package analytics

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	apperrors "shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/models"
)

func TotalOrders(daily []models.DailyOrders) (int, error) {
	if len(daily) == 0 {
		return 0, apperrors.EmptyDataset("total orders over an empty daily orders table")
	}
	return lo.SumBy(daily, func(d models.DailyOrders) int {
		return d.OrderCount
	}), nil
}

func TotalRevenue(daily []models.DailyOrders) (decimal.Decimal, error) {
	if len(daily) == 0 {
		return decimal.Zero, apperrors.EmptyDataset("total revenue over an empty daily orders table")
	}
	return lo.Reduce(daily, func(acc decimal.Decimal, d models.DailyOrders, _ int) decimal.Decimal {
		return acc.Add(d.Revenue)
	}, decimal.Zero), nil
}

func MeanRecency(records []models.RFMRecord) (float64, error) {
	if len(records) == 0 {
		return 0, apperrors.EmptyDataset("mean recency over an empty RFM table")
	}
	total := lo.SumBy(records, func(r models.RFMRecord) int {
		return r.Recency
	})
	return float64(total) / float64(len(records)), nil
}

func MeanFrequency(records []models.RFMRecord) (float64, error) {
	if len(records) == 0 {
		return 0, apperrors.EmptyDataset("mean frequency over an empty RFM table")
	}
	total := lo.SumBy(records, func(r models.RFMRecord) int {
		return r.Frequency
	})
	return float64(total) / float64(len(records)), nil
}

func MeanMonetary(records []models.RFMRecord) (decimal.Decimal, error) {
	if len(records) == 0 {
		return decimal.Zero, apperrors.EmptyDataset("mean monetary over an empty RFM table")
	}
	total := lo.Reduce(records, func(acc decimal.Decimal, r models.RFMRecord, _ int) decimal.Decimal {
		return acc.Add(r.Monetary)
	}, decimal.Zero)
	return total.Div(decimal.NewFromInt(int64(len(records)))), nil
}

// Summarize computes every scalar consumed by the dashboard header. It fails
// with an EMPTY_DATASET error when either table has no rows.
func Summarize(daily []models.DailyOrders, records []models.RFMRecord) (models.Summary, error) {
	var (
		s   models.Summary
		err error
	)
	if s.TotalOrders, err = TotalOrders(daily); err != nil {
		return models.Summary{}, err
	}
	if s.TotalRevenue, err = TotalRevenue(daily); err != nil {
		return models.Summary{}, err
	}
	if s.MeanRecency, err = MeanRecency(records); err != nil {
		return models.Summary{}, err
	}
	if s.MeanFrequency, err = MeanFrequency(records); err != nil {
		return models.Summary{}, err
	}
	if s.MeanMonetary, err = MeanMonetary(records); err != nil {
		return models.Summary{}, err
	}
	return s, nil
}
