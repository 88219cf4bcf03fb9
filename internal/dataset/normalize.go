package dataset

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

const (
	colOrderID      = "order_id"
	colCustomerID   = "customer_id"
	colProductName  = "product_name"
	colQuantity     = "quantity"
	colTotalPrice   = "total_price"
	colOrderDate    = "order_date"
	colDeliveryDate = "delivery_date"
	colGender       = "gender"
	colAgeGroup     = "age_group"
	colState        = "state"
)

var requiredColumns = []string{
	colOrderID, colCustomerID, colProductName, colQuantity, colTotalPrice,
	colOrderDate, colGender, colAgeGroup, colState,
}

// Merged order-item exports carry the item quantity as quantity_x.
var columnAliases = map[string]string{
	"quantity_x": colQuantity,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

type InvalidRowPolicy int

const (
	// Abort stops at the first unparseable row.
	Abort InvalidRowPolicy = iota
	// Drop skips unparseable rows and counts them.
	Drop
)

func ParsePolicy(s string) (InvalidRowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort", "":
		return Abort, nil
	case "drop":
		return Drop, nil
	default:
		return Abort, fmt.Errorf("unknown invalid row policy %q", s)
	}
}

func (p InvalidRowPolicy) String() string {
	if p == Drop {
		return "drop"
	}
	return "abort"
}

type ParseResult struct {
	Rows      []models.TransactionRow
	Dropped   int
	FirstDrop error
}

// ParseRecords converts a header row plus data records into transaction
// rows, in record order. Records are parsed in parallel batches; the policy
// is applied afterwards in record order so the outcome is deterministic.
func ParseRecords(ctx context.Context, records [][]string, policy InvalidRowPolicy) (ParseResult, error) {
	if len(records) == 0 {
		return ParseResult{}, apperrors.Parse(0, "", fmt.Errorf("missing header row"))
	}

	index, err := columnIndex(records[0])
	if err != nil {
		return ParseResult{}, err
	}

	data := records[1:]
	parsed := make([]models.TransactionRow, len(data))
	errs := make([]error, len(data))

	for start := 0; start < len(data); start += batchSize {
		end := min(start+batchSize, len(data))

		var g errgroup.Group
		g.SetLimit(maxWorkers)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				parsed[i], errs[i] = parseRow(index, data[i], i+1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return ParseResult{}, err
		}
	}

	result := ParseResult{Rows: make([]models.TransactionRow, 0, len(data))}
	for i, rowErr := range errs {
		if rowErr == nil {
			result.Rows = append(result.Rows, parsed[i])
			continue
		}
		if policy == Abort {
			return ParseResult{}, rowErr
		}
		if result.FirstDrop == nil {
			result.FirstDrop = rowErr
		}
		result.Dropped++
	}
	return result, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, apperrors.Parse(0, col, fmt.Errorf("missing required column"))
		}
	}
	return index, nil
}

func parseRow(index map[string]int, record []string, line int) (models.TransactionRow, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	fail := func(col string, err error) (models.TransactionRow, error) {
		return models.TransactionRow{}, apperrors.Parse(line, col, err)
	}

	var row models.TransactionRow

	for _, col := range []string{colOrderID, colCustomerID} {
		if isBlank(field(col)) {
			return fail(col, fmt.Errorf("empty identifier"))
		}
	}
	row.OrderID = field(colOrderID)
	row.CustomerID = models.CustomerID(field(colCustomerID))
	row.ProductName = field(colProductName)
	row.Gender = field(colGender)
	row.State = field(colState)

	qty, err := parseQuantity(field(colQuantity))
	if err != nil {
		return fail(colQuantity, err)
	}
	row.Quantity = qty

	price, err := decimal.NewFromString(field(colTotalPrice))
	if err != nil {
		return fail(colTotalPrice, err)
	}
	if price.IsNegative() {
		return fail(colTotalPrice, fmt.Errorf("negative amount %s", price))
	}
	row.TotalPrice = price

	if row.OrderDate, err = ParseDate(field(colOrderDate)); err != nil {
		return fail(colOrderDate, err)
	}

	if delivery := field(colDeliveryDate); !isBlank(delivery) {
		if row.DeliveryDate, err = ParseDate(delivery); err != nil {
			return fail(colDeliveryDate, err)
		}
	}

	if row.AgeGroup, err = models.ParseAgeGroup(field(colAgeGroup)); err != nil {
		return fail(colAgeGroup, err)
	}

	return row, nil
}

// ParseDate accepts the layouts found in order exports and drops any time
// of day.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unrecognised date %q", s)
}

func parseQuantity(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative quantity %d", n)
		}
		return n, nil
	}
	// Spreadsheet exports may render integers as 2.0.
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int(d.IntPart()), nil
}

func isBlank(s string) bool {
	switch s {
	case "", "NaN", "NA", "<nil>":
		return true
	}
	return false
}

// SortByOrderDate returns a copy of rows stable-sorted by order date.
func SortByOrderDate(rows []models.TransactionRow) []models.TransactionRow {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.TransactionRow) int {
		switch {
		case a.OrderDate.Before(b.OrderDate):
			return -1
		case a.OrderDate.After(b.OrderDate):
			return 1
		}
		return 0
	})
	return sorted
}
