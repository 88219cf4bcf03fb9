package analytics

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	"shopee-dashboard/internal/models"
)

// GlobalMaxDate is the latest order date in rows. ok is false for no rows.
func GlobalMaxDate(rows []models.TransactionRow) (civil.Date, bool) {
	if len(rows) == 0 {
		return civil.Date{}, false
	}
	latest := lo.MaxBy(rows, func(a, b models.TransactionRow) bool {
		return a.OrderDate.After(b.OrderDate)
	})
	return latest.OrderDate, true
}

// ScoreRFM returns one record per customer in first-seen order. Recency is
// measured in days back from the latest order date across all rows.
func ScoreRFM(rows []models.TransactionRow) []models.RFMRecord {
	reference, ok := GlobalMaxDate(rows)
	if !ok {
		return []models.RFMRecord{}
	}

	customers, groups := groupOrdered(rows, func(r models.TransactionRow) models.CustomerID {
		return r.CustomerID
	})

	result := make([]models.RFMRecord, 0, len(customers))
	for _, id := range customers {
		group := groups[id]
		last, _ := GlobalMaxDate(group)
		result = append(result, models.RFMRecord{
			CustomerID: id,
			Recency:    reference.DaysSince(last),
			Frequency:  distinctOrders(group),
			Monetary:   sumTotalPrice(group),
		})
	}
	return result
}

// TopByRecency returns up to n customers with the most recent orders.
func TopByRecency(records []models.RFMRecord, n int) []models.RFMRecord {
	return topRFM(records, n, func(a, b models.RFMRecord) int {
		return cmp.Compare(a.Recency, b.Recency)
	})
}

// TopByFrequency returns up to n customers with the most distinct orders.
func TopByFrequency(records []models.RFMRecord, n int) []models.RFMRecord {
	return topRFM(records, n, func(a, b models.RFMRecord) int {
		return cmp.Compare(b.Frequency, a.Frequency)
	})
}

// TopByMonetary returns up to n customers with the highest spend.
func TopByMonetary(records []models.RFMRecord, n int) []models.RFMRecord {
	return topRFM(records, n, func(a, b models.RFMRecord) int {
		return b.Monetary.Cmp(a.Monetary)
	})
}

func topRFM(records []models.RFMRecord, n int, order func(a, b models.RFMRecord) int) []models.RFMRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, order)
	return lo.Slice(sorted, 0, n)
}
