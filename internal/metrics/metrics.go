// Package metrics provides Prometheus metrics for the calculator service.
package metrics

import (
	"errors"

	"github.com/example/strcalc/pkg/calculator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for CalculationsTotal.
const (
	OutcomeOK               = "ok"
	OutcomeNegative         = "negative"
	OutcomeMalformed        = "malformed"
	OutcomeInvalidDelimiter = "invalid_delimiter"
	OutcomeOverflow         = "overflow"
	OutcomeError            = "error"
)

var (
	// CalculationsTotal counts evaluated inputs by outcome.
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strcalc_calculations_total",
		Help: "Total number of evaluated inputs, by outcome.",
	}, []string{"outcome"})

	// CacheLookupsTotal counts result lookups by where the result came from.
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strcalc_cache_lookups_total",
		Help: "Total number of result lookups, by source (cache, redis, compute).",
	}, []string{"source"})

	// RequestDuration observes HTTP request latency. Route is the chi pattern, never the raw path.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strcalc_http_request_duration_seconds",
		Help:    "HTTP request latency, by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// Outcome maps a calculator error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, calculator.ErrNegativeNumbers):
		return OutcomeNegative
	case errors.Is(err, calculator.ErrMalformedNumber):
		return OutcomeMalformed
	case errors.Is(err, calculator.ErrInvalidDelimiter):
		return OutcomeInvalidDelimiter
	case errors.Is(err, calculator.ErrSumOverflow):
		return OutcomeOverflow
	}
	return OutcomeError
}

// ObserveCalculation increments CalculationsTotal for err's outcome.
func ObserveCalculation(err error) {
	CalculationsTotal.WithLabelValues(Outcome(err)).Inc()
}
