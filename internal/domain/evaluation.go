package domain

import "time"

// Evaluation is one satisfaction-survey rating for an attendant, as
// ingested from the survey collaborator.
type Evaluation struct {
	ID          uint      `json:"id"`
	AttendantID uint      `json:"attendant_id"`
	Rating      int       `json:"rating"` // 1..5
	Date        time.Time `json:"date"`
	SeasonID    *uint     `json:"season_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttendantStats is the aggregated slice of ledger and evaluation data a
// criteria rule is evaluated against. The same struct carries either
// lifetime or season-bounded numbers; rules never know which.
type AttendantStats struct {
	AttendantID     uint
	EvaluationCount int
	AverageRating   float64
	TotalXp         int
	Ratings         []int // chronological order
	WonSeason       bool  // sole top scorer of some finished, unawarded season
}
