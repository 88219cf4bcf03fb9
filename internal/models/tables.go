package models

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type DailyOrders struct {
	Date       civil.Date      `json:"order_date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
}

type GenderBreakdown struct {
	Gender        string `json:"gender"`
	CustomerCount int    `json:"customer_count"`
}

type AgeBreakdown struct {
	AgeGroup      AgeGroup `json:"age_group"`
	CustomerCount int      `json:"customer_count"`
}

// StateBreakdown rows come sorted by CustomerCount descending. IsMax is set
// on exactly one row of a non-empty table.
type StateBreakdown struct {
	State         string `json:"state"`
	CustomerCount int    `json:"customer_count"`
	IsMax         bool   `json:"is_max"`
}

type RFMRecord struct {
	CustomerID CustomerID      `json:"customer_id"`
	Recency    int             `json:"recency"`
	Frequency  int             `json:"frequency"`
	Monetary   decimal.Decimal `json:"monetary"`
}

type Summary struct {
	TotalOrders   int             `json:"total_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	MeanRecency   float64         `json:"mean_recency"`
	MeanFrequency float64         `json:"mean_frequency"`
	MeanMonetary  decimal.Decimal `json:"mean_monetary"`
}

type DateBounds struct {
	Min civil.Date `json:"min"`
	Max civil.Date `json:"max"`
}
