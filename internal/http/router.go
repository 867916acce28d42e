package apihttp

import (
	"context"
	"net/http"

	"github.com/example/strcalc/internal/handlers"
	"github.com/example/strcalc/internal/history"
	applog "github.com/example/strcalc/internal/log"
	"github.com/example/strcalc/internal/rate"
	"github.com/example/strcalc/pkg/jsonutil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger is a backend checked by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds what the router needs. History may be nil.
type Deps struct {
	Calc    handlers.CalcDeps
	Limiter *rate.LimiterMap
	History history.Store
	Checks  map[string]Pinger // extra backends for /healthz, by name
	Logger  zerolog.Logger
}

// NewRouter wires routes and middlewares.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(d.Logger))
	r.Use(CORS)
	r.Use(Metrics)

	checks := make(map[string]Pinger, len(d.Checks)+1)
	for name, p := range d.Checks {
		checks[name] = p
	}
	if d.History != nil {
		checks["history"] = d.History
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		for name, p := range checks {
			if err := p.Ping(r.Context()); err != nil {
				lg := applog.WithContext(r.Context(), d.Logger)
				lg.Warn().Err(err).Str("check", name).Msg("health check failed")
				jsonutil.JSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy", "failed": name})
				return
			}
		}
		jsonutil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	calc := d.Calc
	if calc.History == nil {
		calc.History = d.History
	}
	r.Route("/api", func(api chi.Router) {
		api.Use(RateLimit(d.Limiter))
		api.Post("/add", handlers.NewAddHandler(calc).ServeHTTP)
		api.Post("/add/batch", handlers.NewBatchHandler(calc).ServeHTTP)
		api.Get("/history", handlers.NewHistoryHandler(calc).ServeHTTP)
	})

	return r
}
