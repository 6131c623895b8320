package model

import "time"

// WeekBucket aggregates ledger entries for one Monday-aligned week.
type WeekBucket struct {
	WeekStart time.Time  `json:"weekStart"`
	WeekEnd   time.Time  `json:"weekEnd"` // exclusive
	Income    float64    `json:"income"`
	Expense   float64    `json:"expense"`
	Daily     [7]float64 `json:"daily"` // Mon..Sun net, expenses negative
}

// CategoryShare is one slice of the expense distribution.
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
	Color      string  `json:"color"`
}

type DistributionSummary struct {
	TopCategory           string  `json:"topCategory"`
	TopAmount             float64 `json:"topAmount"`
	AveragePerTransaction float64 `json:"averagePerTransaction"`
}

// CategoryDistribution is the expense breakdown over a trailing window of days.
type CategoryDistribution struct {
	Total      float64             `json:"total"`
	Days       int                 `json:"days"`
	Categories []CategoryShare     `json:"categories"`
	Summary    DistributionSummary `json:"summary"`
}
