package types

import (
	"math"
	"time"

	"github.com/example/strcalc/internal/history"
)

// AddRequest is the payload for a single evaluation.
type AddRequest struct {
	Input string `json:"input"`
}

// AddResponse is the JSON response for a successful evaluation.
type AddResponse struct {
	Input      string  `json:"input"`
	Sum        float64 `json:"sum"`
	Count      int     `json:"count"`
	Source     string  `json:"source"`      // "cache", "redis" or "compute"
	ComputedAt string  `json:"computed_at"` // RFC3339
}

// ErrorResponse is returned for rejected inputs and bad requests.
// Negatives is set only for negative-number rejections.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Negatives []float64 `json:"negatives,omitempty"`
}

// BatchRequest evaluates several inputs in one call.
type BatchRequest struct {
	Inputs []string `json:"inputs"`
}

// BatchItem is one batch result, in request order. Either Sum or Error is set.
type BatchItem struct {
	Input     string    `json:"input"`
	Sum       *float64  `json:"sum,omitempty"`
	Source    string    `json:"source,omitempty"`
	Error     string    `json:"error,omitempty"`
	Negatives []float64 `json:"negatives,omitempty"`
}

// BatchResponse is the JSON response for the batch endpoint. Total is the sum
// over successful items and is omitted when it overflows.
type BatchResponse struct {
	Results []BatchItem `json:"results"`
	Total   *float64    `json:"total,omitempty"`
	Failed  int         `json:"failed"`
}

// HistoryResponse lists recent calculations, newest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// FormatTime renders ts as RFC3339 UTC.
func FormatTime(ts time.Time) string { return ts.UTC().Format(time.RFC3339) }

// SumItems totals the successful items of a batch. total is nil when the sum
// leaves the float64 range.
func SumItems(items []BatchItem) (total *float64, failed int) {
	var sum float64
	for i := range items {
		if items[i].Sum == nil {
			failed++
			continue
		}
		sum += *items[i].Sum
	}
	if math.IsInf(sum, 0) {
		return nil, failed
	}
	return &sum, failed
}
