package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/starfederation/datastar-go/datastar"

	"shopee-dashboard/internal/analytics"
	apperrors "shopee-dashboard/internal/errors"
)

type rangeSignals struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// rangeFromRequest reads ?start=YYYY-MM-DD&end=YYYY-MM-DD, falling back to
// Datastar signals of the same names. No bounds at all means the whole
// dataset and yields nil.
func rangeFromRequest(r *http.Request) (*analytics.DateRange, error) {
	q := r.URL.Query()
	bounds := rangeSignals{Start: q.Get("start"), End: q.Get("end")}

	if bounds.Start == "" && bounds.End == "" && q.Has("datastar") {
		if err := datastar.ReadSignals(r, &bounds); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeBadRequest, "invalid datastar signals")
		}
	}

	if bounds.Start == "" && bounds.End == "" {
		return nil, nil
	}
	if bounds.Start == "" || bounds.End == "" {
		return nil, apperrors.InvalidRange("both start and end dates are required")
	}

	start, err := civil.ParseDate(bounds.Start)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidRange, "start date must be YYYY-MM-DD")
	}
	end, err := civil.ParseDate(bounds.End)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidRange, "end date must be YYYY-MM-DD")
	}

	rng, err := analytics.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return &rng, nil
}
