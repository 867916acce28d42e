package apihttp

import (
	"net/http"
	"strconv"
	"time"

	applog "github.com/example/strcalc/internal/log"
	"github.com/example/strcalc/internal/metrics"
	"github.com/example/strcalc/internal/rate"
	"github.com/example/strcalc/internal/types"
	"github.com/example/strcalc/pkg/jsonutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestID injects a request id into context and the response header.
// An incoming X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		r = r.WithContext(applog.ContextWithRequestID(r.Context(), reqID))
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

// Logger logs one structured event per request.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rlw := &respLogger{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rlw, r)
			lg := applog.WithContext(r.Context(), l)
			lg.Info().
				Str("event", "request").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rlw.status).
				Dur("dur", time.Since(start)).
				Str("ip", rate.IPFromRequest(r)).
				Msg("request")
		})
	}
}

type respLogger struct {
	http.ResponseWriter
	status int
}

func (r *respLogger) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// CORS allows cross-origin requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Metrics records request latency by chi route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rlw := &respLogger{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rlw, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(rlw.status)).Observe(time.Since(start).Seconds())
	})
}

// RateLimit enforces per-IP rate limiting.
func RateLimit(lm *rate.LimiterMap) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lm.Allow(rate.IPFromRequest(r)) {
				jsonutil.JSON(w, http.StatusTooManyRequests, types.ErrorResponse{Error: "rate limited"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
