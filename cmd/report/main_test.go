package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "shopee-dashboard/internal/errors"
)

const sampleCSV = `order_id,customer_id,product_name,quantity,total_price,order_date,delivery_date,gender,age_group,state
O001,C001,Kemeja,2,150000,2021-03-01,2021-03-04,Female,Adults,Jakarta
O002,C002,Celana,1,99000,2021-03-03,,Male,Youth,Bali
O003,C001,Sepatu,1,250000,2021-03-05,2021-03-08,Female,Adults,Jakarta
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestReport_FullDataset(t *testing.T) {
	out, _, err := execute(t, "--file", writeSample(t, sampleCSV))
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var got struct {
		Range struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"range"`
		RowCount int `json:"row_count"`
		Summary  struct {
			TotalOrders  int    `json:"total_orders"`
			TotalRevenue string `json:"total_revenue"`
		} `json:"summary"`
		State []struct {
			State string `json:"state"`
			IsMax bool   `json:"is_max"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}

	if got.Range.Start != "2021-03-01" || got.Range.End != "2021-03-05" {
		t.Errorf("range = %s..%s, want 2021-03-01..2021-03-05", got.Range.Start, got.Range.End)
	}
	if got.RowCount != 3 {
		t.Errorf("row_count = %d, want 3", got.RowCount)
	}
	if got.Summary.TotalOrders != 3 {
		t.Errorf("total_orders = %d, want 3", got.Summary.TotalOrders)
	}
	if got.Summary.TotalRevenue != "499000" {
		t.Errorf("total_revenue = %q, want 499000", got.Summary.TotalRevenue)
	}
	if len(got.State) != 2 {
		t.Fatalf("expected 2 state rows, got %d", len(got.State))
	}
	if got.State[0].State != "Jakarta" || !got.State[0].IsMax {
		t.Errorf("first state row = %+v, want Jakarta flagged as max", got.State[0])
	}
}

func TestReport_DateRangeAndTop(t *testing.T) {
	out, _, err := execute(t, "--file", writeSample(t, sampleCSV),
		"--start", "2021-03-02", "--end", "2021-03-05", "--top", "1")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var got struct {
		RowCount     int `json:"row_count"`
		BestProducts []struct {
			ProductName string `json:"product_name"`
		} `json:"best_products"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.RowCount != 2 {
		t.Errorf("row_count = %d, want 2", got.RowCount)
	}
	if len(got.BestProducts) != 1 {
		t.Errorf("best_products has %d rows, want 1", len(got.BestProducts))
	}
}

func TestReport_RangeErrorsAreInvalidRange(t *testing.T) {
	path := writeSample(t, sampleCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"start without end", []string{"--start", "2021-03-01"}},
		{"end without start", []string{"--end", "2021-03-01"}},
		{"inverted range", []string{"--start", "2021-03-05", "--end", "2021-03-01"}},
		{"bad date", []string{"--start", "03/01/2021", "--end", "2021-03-05"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"--file", path}, tt.args...)...)
			if !errors.Is(err, apperrors.ErrInvalidRange) {
				t.Errorf("error = %v, want INVALID_RANGE", err)
			}
			if out != "" {
				t.Errorf("stdout should be empty, got %q", out)
			}
		})
	}
}

func TestReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"non-positive top", []string{"--file", writeSample(t, sampleCSV), "--top", "0"}},
		{"missing file", []string{"--file", filepath.Join(t.TempDir(), "nope.csv")}},
		{"positional args", []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			if err == nil {
				t.Error("expected an error")
			}
			if out != "" {
				t.Errorf("stdout should be empty, got %q", out)
			}
		})
	}
}

func TestReport_DropInvalid(t *testing.T) {
	path := writeSample(t, sampleCSV+"O004,C003,Topi,many,10000,2021-03-06,,Male,Seniors,Aceh\n")

	if _, _, err := execute(t, "--file", path); !errors.Is(err, apperrors.ErrParse) {
		t.Errorf("default policy error = %v, want PARSE_ERROR", err)
	}

	out, stderr, err := execute(t, "--file", path, "--drop-invalid")
	if err != nil {
		t.Fatalf("report with --drop-invalid failed: %v", err)
	}
	if !strings.Contains(out, `"row_count": 3`) {
		t.Errorf("expected 3 rows in output, got %s", out)
	}
	if !strings.Contains(stderr, "dropped") {
		t.Errorf("stderr should log dropped rows, got %q", stderr)
	}
}
