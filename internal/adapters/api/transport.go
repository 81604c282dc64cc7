// internal/adapters/api/transport.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ammerola/resell-dashboard/internal/observability"
	"github.com/ammerola/resell-dashboard/internal/pkg/config"
	"github.com/ammerola/resell-dashboard/internal/pkg/logger"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	slowRequestThreshold = 5 * time.Second
)

// NewTransport builds the standard outgoing chain: request id, idempotency
// key, logging, metrics and client-side rate limiting.
func NewTransport(cfg config.APIConfig, m *observability.Metrics, l *slog.Logger) http.RoundTripper {
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, cfg.RateBurst))
	return Chain(http.DefaultTransport,
		RequestID(),
		IdempotencyKey(),
		Logging(l.With(slog.String("component", "api_transport"))),
		Metrics(m),
		RateLimit(limiter),
	)
}

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Middleware wraps an outgoing round tripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base with mws. The first middleware is the outermost.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// RequestID tags every request with the context's request id, or a fresh one.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			id := logger.RequestID(r.Context())
			if id == "" {
				id = uuid.New().String()
			}
			r = r.Clone(logger.WithRequestID(r.Context(), id))
			r.Header.Set(HeaderRequestID, id)
			return next.RoundTrip(r)
		})
	}
}

// IdempotencyKey forwards the context's idempotency key on POST requests.
func IdempotencyKey() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if key := logger.IdempotencyKey(r.Context()); key != "" && r.Method == http.MethodPost {
				r = r.Clone(r.Context())
				r.Header.Set(HeaderIdempotencyKey, key)
			}
			return next.RoundTrip(r)
		})
	}
}

// RateLimit blocks until limiter admits the request or the context ends.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if err := limiter.Wait(r.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(r)
		})
	}
}

// Metrics records the status and latency of every request.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			status := 0
			if err == nil {
				status = resp.StatusCode
			}
			m.RecordRemoteRequest(r.Method, status, time.Since(start))
			return resp, err
		})
	}
}

// Logging logs each completed request, at warn for 4xx and slow calls and
// error for 5xx and transport failures.
func Logging(l *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			duration := time.Since(start)

			ctx := r.Context()
			if err != nil {
				l.ErrorContext(ctx, "request_failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Duration("duration", duration),
					slog.String("error", err.Error()))
				return nil, err
			}

			level := slog.LevelDebug
			switch {
			case resp.StatusCode >= 500:
				level = slog.LevelError
			case resp.StatusCode >= 400:
				level = slog.LevelWarn
			case duration > slowRequestThreshold:
				level = slog.LevelWarn
			}

			l.Log(ctx, level, "request_completed",
				slog.Group("request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", r.Header.Get(HeaderRequestID)),
				),
				slog.Group("response",
					slog.Int("status", resp.StatusCode),
					slog.Duration("duration", duration),
					slog.Bool("slow_request", duration > slowRequestThreshold),
				),
			)
			return resp, nil
		})
	}
}
