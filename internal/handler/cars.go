package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Lucky-luke36/auto-arbitrage/internal/model"
	"github.com/Lucky-luke36/auto-arbitrage/internal/repository"
)

type CarsHandler struct {
	repo *repository.CarRepo
}

func NewCarsHandler(repo *repository.CarRepo) *CarsHandler {
	return &CarsHandler{repo: repo}
}

// List serves GET /api/v1/cars with page/limit paging and optional
// make/model/year/manual_review filters.
func (h *CarsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := repository.ListQuery{
		Make:   r.URL.Query().Get("make"),
		Model:  r.URL.Query().Get("model"),
		Year:   r.URL.Query().Get("year"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v := r.URL.Query().Get("manual_review"); v != "" {
		review := v == "1" || v == "true"
		q.ManualReview = &review
	}

	cars, err := h.repo.List(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "failed to list cars")
		return
	}
	total, err := h.repo.Count(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "failed to count cars")
		return
	}

	if cars == nil {
		cars = []model.Car{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.CarsResponse{
		Page:  page,
		Limit: limit,
		Total: total,
		Cars:  cars,
	})
}

// Makes serves GET /api/v1/makes.
func (h *CarsHandler) Makes(w http.ResponseWriter, r *http.Request) {
	makes, err := h.repo.Makes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", "failed to list makes")
		return
	}
	if makes == nil {
		makes = []model.MakeCount{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.MakesResponse{Makes: makes})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: code, Message: message})
}
