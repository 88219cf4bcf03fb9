package analytics

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"shopee-dashboard/internal/models"
)

// groupOrdered groups rows by key and also returns the keys in first-seen
// order, so callers never depend on map iteration order.
func groupOrdered[K comparable](rows []models.TransactionRow, key func(models.TransactionRow) K) ([]K, map[K][]models.TransactionRow) {
	groups := lo.GroupBy(rows, key)
	keys := lo.UniqMap(rows, func(r models.TransactionRow, _ int) K {
		return key(r)
	})
	return keys, groups
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func distinctOrders(rows []models.TransactionRow) int {
	return len(lo.UniqMap(rows, func(r models.TransactionRow, _ int) string {
		return r.OrderID
	}))
}

func distinctCustomers(rows []models.TransactionRow) int {
	return len(lo.UniqMap(rows, func(r models.TransactionRow, _ int) models.CustomerID {
		return r.CustomerID
	}))
}

func sumTotalPrice(rows []models.TransactionRow) decimal.Decimal {
	return lo.Reduce(rows, func(acc decimal.Decimal, r models.TransactionRow, _ int) decimal.Decimal {
		return acc.Add(r.TotalPrice)
	}, decimal.Zero)
}

// DailyOrdersByDate returns one row per order date, ascending.
func DailyOrdersByDate(rows []models.TransactionRow) []models.DailyOrders {
	dates, groups := groupOrdered(rows, func(r models.TransactionRow) civil.Date {
		return r.OrderDate
	})

	result := make([]models.DailyOrders, 0, len(dates))
	for _, d := range dates {
		group := groups[d]
		result = append(result, models.DailyOrders{
			Date:       d,
			OrderCount: distinctOrders(group),
			Revenue:    sumTotalPrice(group),
		})
	}
	slices.SortFunc(result, func(a, b models.DailyOrders) int {
		return compareDates(a.Date, b.Date)
	})
	return result
}

// ProductSalesByName sums quantity per product, sorted by quantity
// descending. Equal quantities keep first-seen order.
func ProductSalesByName(rows []models.TransactionRow) []models.ProductSales {
	names, groups := groupOrdered(rows, func(r models.TransactionRow) string {
		return r.ProductName
	})

	result := make([]models.ProductSales, 0, len(names))
	for _, name := range names {
		result = append(result, models.ProductSales{
			ProductName: name,
			TotalQuantity: lo.SumBy(groups[name], func(r models.TransactionRow) int {
				return r.Quantity
			}),
		})
	}
	slices.SortStableFunc(result, func(a, b models.ProductSales) int {
		return cmp.Compare(b.TotalQuantity, a.TotalQuantity)
	})
	return result
}

// CustomersByGender counts distinct customers per gender, ordered by gender.
func CustomersByGender(rows []models.TransactionRow) []models.GenderBreakdown {
	genders, groups := groupOrdered(rows, func(r models.TransactionRow) string {
		return r.Gender
	})

	result := make([]models.GenderBreakdown, 0, len(genders))
	for _, g := range genders {
		result = append(result, models.GenderBreakdown{
			Gender:        g,
			CustomerCount: distinctCustomers(groups[g]),
		})
	}
	slices.SortFunc(result, func(a, b models.GenderBreakdown) int {
		return cmp.Compare(a.Gender, b.Gender)
	})
	return result
}

// CustomersByAge always returns the three age groups in fixed order, with
// zero counts for groups absent from rows. An empty input yields no rows.
func CustomersByAge(rows []models.TransactionRow) []models.AgeBreakdown {
	if len(rows) == 0 {
		return []models.AgeBreakdown{}
	}
	_, groups := groupOrdered(rows, func(r models.TransactionRow) models.AgeGroup {
		return r.AgeGroup
	})

	result := make([]models.AgeBreakdown, 0, len(models.AgeGroups))
	for _, g := range models.AgeGroups {
		result = append(result, models.AgeBreakdown{
			AgeGroup:      g,
			CustomerCount: distinctCustomers(groups[g]),
		})
	}
	return result
}

// CustomersByState counts distinct customers per state, sorted by count
// descending then state name. The first row is flagged as the maximum.
func CustomersByState(rows []models.TransactionRow) []models.StateBreakdown {
	states, groups := groupOrdered(rows, func(r models.TransactionRow) string {
		return r.State
	})

	result := make([]models.StateBreakdown, 0, len(states))
	for _, s := range states {
		result = append(result, models.StateBreakdown{
			State:         s,
			CustomerCount: distinctCustomers(groups[s]),
		})
	}
	slices.SortFunc(result, func(a, b models.StateBreakdown) int {
		return cmp.Or(
			cmp.Compare(b.CustomerCount, a.CustomerCount),
			cmp.Compare(a.State, b.State),
		)
	})
	if len(result) > 0 {
		result[0].IsMax = true
	}
	return result
}

// BestProducts returns up to n products with the highest quantity.
func BestProducts(sales []models.ProductSales, n int) []models.ProductSales {
	return slices.Clone(lo.Slice(sales, 0, n))
}

// WorstProducts returns up to n products with the lowest quantity. sales
// must be in the order produced by ProductSalesByName.
func WorstProducts(sales []models.ProductSales, n int) []models.ProductSales {
	asc := slices.Clone(sales)
	slices.SortStableFunc(asc, func(a, b models.ProductSales) int {
		return cmp.Compare(a.TotalQuantity, b.TotalQuantity)
	})
	return lo.Slice(asc, 0, n)
}
