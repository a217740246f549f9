package model

// Car is the canonical listing record. Every per-marketplace store and the
// merged store share this shape; `link` is the natural key.
type Car struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Price        int64  `json:"price"`
	Currency     string `json:"currency"`
	Mileage      int64  `json:"mileage"`
	MileageUnit  string `json:"mileage_unit"`
	Transmission string `json:"transmission"`
	FuelType     string `json:"fuelType"`
	Source       string `json:"source"`
	Link         string `json:"link"`
	Year         string `json:"year"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Trim         string `json:"trim"`
	ManualReview bool   `json:"manual_review"`
}

// FilteredModel is a row of the derived filtered_models table: a canonical
// record whose raw model resolved to a clean model, reduced to the fields
// the price models consume.
type FilteredModel struct {
	Make         string `json:"make"`
	MatchedModel string `json:"matched_model"`
	Year         string `json:"year"`
	Mileage      int64  `json:"mileage"`
	Price        int64  `json:"price"`
}
