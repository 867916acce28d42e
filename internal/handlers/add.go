package handlers

import (
	"net/http"

	"github.com/example/strcalc/internal/types"
	"github.com/example/strcalc/pkg/jsonutil"
)

// AddHandler serves POST /api/add.
type AddHandler struct{ Deps CalcDeps }

func NewAddHandler(deps CalcDeps) *AddHandler { return &AddHandler{Deps: deps} }

func (h *AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req types.AddRequest
	if err := jsonutil.Decode(w, r, h.Deps.MaxInputBytes, &req); err != nil {
		jsonutil.JSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "bad request"})
		return
	}

	res, src, err := h.Deps.evaluate(r.Context(), req.Input)
	if err != nil {
		jsonutil.JSON(w, http.StatusUnprocessableEntity, errorResponse(err))
		return
	}
	jsonutil.JSON(w, http.StatusOK, types.AddResponse{
		Input:      req.Input,
		Sum:        res.Sum,
		Count:      res.Count,
		Source:     string(src),
		ComputedAt: types.FormatTime(res.ComputedAt),
	})
}
