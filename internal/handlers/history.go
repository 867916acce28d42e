package handlers

import (
	"net/http"
	"strconv"

	"github.com/example/strcalc/internal/history"
	applog "github.com/example/strcalc/internal/log"
	"github.com/example/strcalc/internal/types"
	"github.com/example/strcalc/pkg/jsonutil"
)

// HistoryHandler serves GET /api/history?limit=N.
type HistoryHandler struct{ Deps CalcDeps }

func NewHistoryHandler(deps CalcDeps) *HistoryHandler { return &HistoryHandler{Deps: deps} }

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonutil.JSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	entries, err := h.Deps.history().Recent(r.Context(), history.ClampLimit(limit))
	if err != nil {
		lg := applog.WithContext(r.Context(), h.Deps.Logger)
		lg.Error().Err(err).Msg("history lookup failed")
		jsonutil.JSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "history unavailable"})
		return
	}
	jsonutil.JSON(w, http.StatusOK, types.HistoryResponse{Entries: entries})
}
