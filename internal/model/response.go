package model

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type CarsResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int   `json:"total"`
	Cars  []Car `json:"cars"`
}

// PriceStats aggregates prices over a make/model/year segment, optionally
// windowed around a mileage value.
type PriceStats struct {
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avg_price"`
	MinPrice int64   `json:"min_price"`
	MaxPrice int64   `json:"max_price"`
}

type PriceStatsResponse struct {
	PriceStats
	Rows []Car `json:"rows"`
}

type MakeCount struct {
	Make  string `json:"make"`
	Count int    `json:"count"`
}

type MakesResponse struct {
	Makes []MakeCount `json:"makes"`
}
