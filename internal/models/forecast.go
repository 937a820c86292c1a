package models

// ExpenseForecast represents accumulated predicted spending over a horizon
type ExpenseForecast struct {
	Username    string  `json:"username"`
	HorizonDays int     `json:"horizon_days"`
	Total       float64 `json:"total"`
}

// DailyPoint represents one dated amount in a chart series
type DailyPoint struct {
	Date   string  `json:"date"` // Format: YYYY-MM-DD
	Amount float64 `json:"amount"`
}

// ForecastSeries holds per-day predictions plus trailing spending history
// for charting
type ForecastSeries struct {
	Username string       `json:"username"`
	History  []DailyPoint `json:"history"`
	Forecast []DailyPoint `json:"forecast"`
}
