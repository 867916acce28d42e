package handlers

import (
	"net/http"
	"sync"

	"github.com/example/strcalc/internal/types"
	"github.com/example/strcalc/pkg/jsonutil"
)

// BatchHandler serves POST /api/add/batch. Inputs are evaluated concurrently
// and results keep request order.
type BatchHandler struct{ Deps CalcDeps }

func NewBatchHandler(deps CalcDeps) *BatchHandler { return &BatchHandler{Deps: deps} }

func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req types.BatchRequest
	if err := jsonutil.Decode(w, r, h.Deps.MaxInputBytes, &req); err != nil {
		jsonutil.JSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "bad request"})
		return
	}
	if len(req.Inputs) == 0 {
		jsonutil.JSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "inputs required"})
		return
	}
	if len(req.Inputs) > h.Deps.MaxBatch {
		jsonutil.JSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "too many inputs"})
		return
	}

	results := make([]types.BatchItem, len(req.Inputs))
	sem := make(chan struct{}, max(h.Deps.MaxConcurrency, 1))
	var wg sync.WaitGroup
	for i, in := range req.Inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			item := types.BatchItem{Input: in}
			res, src, err := h.Deps.evaluate(r.Context(), in)
			if err != nil {
				e := errorResponse(err)
				item.Error, item.Negatives = e.Error, e.Negatives
			} else {
				sum := res.Sum
				item.Sum, item.Source = &sum, string(src)
			}
			// each goroutine owns its slot
			results[i] = item
		}()
	}
	wg.Wait()

	total, failed := types.SumItems(results)
	jsonutil.JSON(w, http.StatusOK, types.BatchResponse{Results: results, Total: total, Failed: failed})
}
