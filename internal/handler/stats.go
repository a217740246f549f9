package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Lucky-luke36/auto-arbitrage/internal/model"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

type StatsHandler struct {
	repo *repository.CarRepo
}

func NewStatsHandler(repo *repository.CarRepo) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// PriceStats serves GET /api/v1/price-stats. make, model and year are
// required; mileage/radius optionally window the segment around a
// mileage value.
func (h *StatsHandler) PriceStats(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	make := params.Get("make")
	mdl := params.Get("model")
	year := params.Get("year")
	if make == "" || mdl == "" || year == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "make, model and year are required")
		return
	}

	q := repository.StatsQuery{
		Make:    make,
		Model:   mdl,
		Year:    year,
		Mileage: int64(queryInt(r, "mileage", 0)),
		Radius:  int64(queryInt(r, "radius", 30000)),
		Limit:   queryInt(r, "limit", 500),
	}

	stats, rows, err := h.repo.PriceStats(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "failed to compute price stats")
		return
	}
	if rows == nil {
		rows = []model.Car{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.PriceStatsResponse{
		PriceStats: stats,
		Rows:       rows,
	})
}
