package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load: %w", Parse(3, "order_date", strconv.ErrSyntax))

	if !stderrors.Is(err, ErrParse) {
		t.Error("wrapped parse error should match ErrParse")
	}
	if stderrors.Is(err, ErrInvalidRange) {
		t.Error("parse error should not match ErrInvalidRange")
	}
	if !stderrors.Is(err, strconv.ErrSyntax) {
		t.Error("parse error should unwrap to its cause")
	}
	if want := `row 3, column "order_date"`; !strings.Contains(err.Error(), want) {
		t.Errorf("Error() = %q, want it to contain %q", err.Error(), want)
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{InvalidRange("x"), http.StatusBadRequest},
		{EmptyDataset("x"), http.StatusUnprocessableEntity},
		{Parse(0, "state", nil), http.StatusUnprocessableEntity},
		{NotFound("x"), http.StatusNotFound},
		{RateLimit("x"), http.StatusTooManyRequests},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
		{Internal("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if tt.err.StatusCode != tt.want {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("wrapped app error keeps its code", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, logger, fmt.Errorf("report: %w", InvalidRange("start after end")), "req-1")

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code      string `json:"code"`
				RequestID string `json:"request_id"`
			} `json:"error"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode JSON: %v", err)
		}
		if body.Error.Code != string(CodeInvalidRange) {
			t.Errorf("code = %q, want %q", body.Error.Code, CodeInvalidRange)
		}
		if body.Error.RequestID != "req-1" {
			t.Errorf("request_id = %q, want req-1", body.Error.RequestID)
		}
		if body.Success {
			t.Error("expected success=false")
		}
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, logger, stderrors.New("boom"), "")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}
