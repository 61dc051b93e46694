package domain

import "time"

// Attendant is a customer-service agent tracked by the gamification
// engine. HR-record details live with the external CRUD collaborator;
// the engine only needs an enumerable identity.
type Attendant struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RankingEntry is one leaderboard row: season XP summed per attendant,
// ordered descending with ties broken by earliest first event.
type RankingEntry struct {
	AttendantID uint      `json:"attendant_id"`
	TotalPoints int       `json:"total_points"`
	FirstEvent  time.Time `json:"-"`
}
