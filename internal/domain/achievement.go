package domain

import "time"

// AchievementConfig is an administrator-managed milestone definition. The
// CriteriaKey selects a rule from the evaluator's rule table; the engine
// evaluates configs but never mutates them.
type AchievementConfig struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	XpReward    int       `json:"xp_reward"`
	Active      bool      `json:"active"`
	CriteriaKey string    `json:"criteria_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnlockedAchievement records that an attendant satisfied an achievement,
// at most once per (attendant, achievement, season) scope. SeasonID nil
// means lifetime scope.
type UnlockedAchievement struct {
	ID            uint      `json:"id"`
	AttendantID   uint      `json:"attendant_id"`
	AchievementID uint      `json:"achievement_id"`
	SeasonID      *uint     `json:"season_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	XpGained      int       `json:"xp_gained"`
}

// UnlockOutcome is the result of one unlock attempt.
type UnlockOutcome string

const (
	OutcomeUnlocked        UnlockOutcome = "unlocked"
	OutcomeAlreadyUnlocked UnlockOutcome = "already_unlocked"
	OutcomeNotEligible     UnlockOutcome = "not_eligible"
)

// AchievementStatus pairs a config with the attendant's unlock state for
// the status query surface.
type AchievementStatus struct {
	Achievement AchievementConfig `json:"achievement"`
	Unlocked    bool              `json:"unlocked"`
	UnlockedAt  *time.Time        `json:"unlocked_at,omitempty"`
	XpGained    int               `json:"xp_gained,omitempty"`
}
