package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/example/strcalc/internal/cache"
	"github.com/example/strcalc/internal/history"
	applog "github.com/example/strcalc/internal/log"
	"github.com/example/strcalc/internal/metrics"
	"github.com/example/strcalc/internal/types"
	"github.com/example/strcalc/pkg/calculator"
	"github.com/rs/zerolog"
)

// CalcDeps bundles dependencies shared by the calculator handlers.
type CalcDeps struct {
	Calculator     calculator.Calculator
	Cache          *cache.Cache
	History        history.Store // optional
	Timeout        time.Duration
	MaxBatch       int
	MaxConcurrency int
	MaxInputBytes  int64
	Logger         zerolog.Logger
}

func (d CalcDeps) history() history.Store {
	if d.History == nil {
		return history.Nop{}
	}
	return d.History
}

// evaluate runs input through the cache and records the outcome.
func (d CalcDeps) evaluate(ctx context.Context, input string) (cache.Result, cache.Source, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	key := cache.Key(input, d.Calculator.PatternDelimiters)
	res, src, err := d.Cache.GetOrCompute(ctx, key, func(context.Context) (cache.Result, error) {
		values, err := d.Calculator.Parse(input)
		if err != nil {
			return cache.Result{}, err
		}
		sum, err := calculator.Total(values)
		if err != nil {
			return cache.Result{}, err
		}
		return cache.Result{Sum: sum, Count: len(values), ComputedAt: time.Now().UTC()}, nil
	})
	metrics.ObserveCalculation(err)
	if err == nil {
		metrics.CacheLookupsTotal.WithLabelValues(string(src)).Inc()
	}
	d.record(ctx, input, res, err)
	return res, src, err
}

func (d CalcDeps) record(ctx context.Context, input string, res cache.Result, calcErr error) {
	e := history.Entry{
		Input:     input,
		Sum:       res.Sum,
		RequestID: applog.RequestIDFromContext(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if calcErr != nil {
		e.Error = calcErr.Error()
		e.Negatives = negativesOf(calcErr)
	}
	ctx, cancel := d.withTimeout(context.WithoutCancel(ctx))
	defer cancel()
	if err := d.history().Record(ctx, e); err != nil {
		lg := applog.WithContext(ctx, d.Logger)
		lg.Warn().Err(err).Msg("history record failed")
	}
}

func (d CalcDeps) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.Timeout)
}

func negativesOf(err error) []float64 {
	var neg *calculator.NegativeNumberError
	if errors.As(err, &neg) {
		return neg.Values
	}
	return nil
}

func errorResponse(err error) types.ErrorResponse {
	return types.ErrorResponse{Error: err.Error(), Negatives: negativesOf(err)}
}
