// Package analytics turns normalized transaction rows into the derived
// tables behind the dashboard: daily orders, product ranking, customer
// demographics and RFM scores, plus the scalar summaries over them.
//
// Every function here is pure. Inputs are never modified and every call
// returns freshly allocated tables.
package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"shopee-dashboard/internal/models"
)

type Report struct {
	Range        *DateRange               `json:"range,omitempty"`
	RowCount     int                      `json:"row_count"`
	DailyOrders  []models.DailyOrders     `json:"daily_orders"`
	ProductSales []models.ProductSales    `json:"product_sales"`
	Gender       []models.GenderBreakdown `json:"gender"`
	Age          []models.AgeBreakdown    `json:"age"`
	State        []models.StateBreakdown  `json:"state"`
	RFM          []models.RFMRecord       `json:"rfm"`
}

// Run filters rows to rng (all rows when rng is nil) and computes the six
// derived tables concurrently.
func Run(ctx context.Context, rows []models.TransactionRow, rng *DateRange) (*Report, error) {
	filtered := rows
	if rng != nil {
		checked, err := NewDateRange(rng.Start, rng.End)
		if err != nil {
			return nil, err
		}
		rng = &checked
		filtered = filterRange(rows, checked)
	}

	report := &Report{Range: rng, RowCount: len(filtered)}

	g, ctx := errgroup.WithContext(ctx)
	stage := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	stage(func() { report.DailyOrders = DailyOrdersByDate(filtered) })
	stage(func() { report.ProductSales = ProductSalesByName(filtered) })
	stage(func() { report.Gender = CustomersByGender(filtered) })
	stage(func() { report.Age = CustomersByAge(filtered) })
	stage(func() { report.State = CustomersByState(filtered) })
	stage(func() { report.RFM = ScoreRFM(filtered) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Report) Summary() (models.Summary, error) {
	return Summarize(r.DailyOrders, r.RFM)
}

func (r *Report) BestProducts(n int) []models.ProductSales {
	return BestProducts(r.ProductSales, n)
}

func (r *Report) WorstProducts(n int) []models.ProductSales {
	return WorstProducts(r.ProductSales, n)
}

// TopCustomers holds the top-n RFM rankings shown side by side.
type TopCustomers struct {
	Recency   []models.RFMRecord `json:"recency"`
	Frequency []models.RFMRecord `json:"frequency"`
	Monetary  []models.RFMRecord `json:"monetary"`
}

func (r *Report) TopCustomers(n int) TopCustomers {
	return TopCustomers{
		Recency:   TopByRecency(r.RFM, n),
		Frequency: TopByFrequency(r.RFM, n),
		Monetary:  TopByMonetary(r.RFM, n),
	}
}
