package models

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// CustomerID is an opaque identifier. It is never interpreted as a number.
type CustomerID string

type AgeGroup int

const (
	AgeYouth AgeGroup = iota
	AgeAdults
	AgeSeniors
)

// AgeGroups lists the age groups in their fixed display order.
var AgeGroups = []AgeGroup{AgeYouth, AgeAdults, AgeSeniors}

func (g AgeGroup) String() string {
	switch g {
	case AgeYouth:
		return "Youth"
	case AgeAdults:
		return "Adults"
	case AgeSeniors:
		return "Seniors"
	default:
		return fmt.Sprintf("AgeGroup(%d)", int(g))
	}
}

func (g AgeGroup) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func ParseAgeGroup(s string) (AgeGroup, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "youth":
		return AgeYouth, nil
	case "adults", "adult":
		return AgeAdults, nil
	case "seniors", "senior":
		return AgeSeniors, nil
	default:
		return 0, fmt.Errorf("unknown age group %q", s)
	}
}

// TransactionRow is one line item of an order.
type TransactionRow struct {
	OrderID      string
	CustomerID   CustomerID
	ProductName  string
	Quantity     int
	TotalPrice   decimal.Decimal
	OrderDate    civil.Date
	DeliveryDate civil.Date // zero when absent
	Gender       string
	AgeGroup     AgeGroup
	State        string
}

func (r TransactionRow) HasDeliveryDate() bool {
	return !r.DeliveryDate.IsZero()
}
