package domain

import (
	"math"
	"time"
)

type XpEventType string

const (
	XpEventEvaluation  XpEventType = "EVALUATION"
	XpEventAchievement XpEventType = "ACHIEVEMENT"
	XpEventManualGrant XpEventType = "MANUAL_GRANT"
)

// XpEvent is one immutable row of the append-only ledger. Points are
// computed once at creation time; totals anywhere in the system are sums
// over Points, never cached counters.
type XpEvent struct {
	ID          uint        `json:"id"`
	AttendantID uint        `json:"attendant_id"`
	BasePoints  int         `json:"base_points"`
	Multiplier  float64     `json:"multiplier"`
	Points      int         `json:"points"`
	Reason      string      `json:"reason"`
	Type        XpEventType `json:"type"`
	Date        time.Time   `json:"date"`
	SeasonID    *uint       `json:"season_id"`
	RelatedID   *uint       `json:"related_id"`
	GranterID   *uint       `json:"granter_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EffectivePoints applies the global and season multipliers to basePoints,
// rounding half-up. Rounding happens exactly once, here, at event-creation
// time; the rounded value is what the ledger sums.
func EffectivePoints(basePoints int, globalMultiplier, seasonMultiplier float64) int {
	return int(math.Floor(float64(basePoints)*globalMultiplier*seasonMultiplier + 0.5))
}

// XpType is a named manual-grant type carrying its base point value.
type XpType struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantLimits are the Grant Guard quotas, loaded from configuration.
type GrantLimits struct {
	MinPointsPerGrant int
	MaxPointsPerGrant int
	DailyPointsLimit  int
	DailyGrantLimit   int
	Cooldown          time.Duration
}
