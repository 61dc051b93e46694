package domain

import "time"

// Season is a bounded scoring window with its own XP multiplier.
// "Current" season is always derived from the active flag plus the
// [StartDate, EndDate] interval, never stored.
type Season struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Active       bool      `json:"active"`
	XpMultiplier float64   `json:"xp_multiplier"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Contains reports whether t falls inside the season interval.
func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.StartDate) && !t.After(s.EndDate)
}

// Overlaps reports whether two season intervals intersect.
func (s Season) Overlaps(other Season) bool {
	return !s.StartDate.After(other.EndDate) && !other.StartDate.After(s.EndDate)
}

// Finished reports whether the season ended before now.
func (s Season) Finished(now time.Time) bool {
	return s.EndDate.Before(now)
}
