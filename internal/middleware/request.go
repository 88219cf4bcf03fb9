package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"shopee-dashboard/internal/errors"
	"shopee-dashboard/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or assigns a new uuid.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
		})
	}
}

// requestRange reports the date range a dashboard request asks for, in the
// same start..end form the analytics span uses. Requests without both
// bounds cover the whole dataset.
func requestRange(r *http.Request) string {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" && end == "" {
		return "all"
	}
	return start + ".." + end
}

func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"range", requestRange(r),
				"request_id", observability.GetRequestID(r.Context()),
			}

			logger.Debug("request started", append(attrs, "remote_addr", r.RemoteAddr)...)
			next.ServeHTTP(rec, r)
			logger.Info("request completed", append(attrs,
				"status", rec.status,
				"duration", time.Since(start),
			)...)
		})
	}
}

// Tracing opens one span per request; analytics spans started by the
// handler become its children.
func Tracing(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			defer span.FinishAndLog(ctx, logger)

			span.SetTag("request_id", observability.GetRequestID(ctx))
			span.SetTag("range", requestRange(r))

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetTag("http.status_code", strconv.Itoa(rec.status))
			if rec.status >= http.StatusBadRequest {
				span.SetError(fmt.Errorf("HTTP %d %s", rec.status, http.StatusText(rec.status)))
			}
		})
	}
}

func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				requestID := observability.GetRequestID(r.Context())
				logger.Error("panic recovered",
					"panic", recovered,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", requestID,
				)
				errors.WriteError(w, logger, errors.Internal("An unexpected error occurred"), requestID)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
