package service

import "github.com/attenda/attenda-api/internal/domain"

// CriteriaFunc is one achievement rule: a pure predicate over aggregated
// attendant statistics. The same function evaluates lifetime or
// season-bounded stats; only the slice passed in differs.
type CriteriaFunc func(domain.AttendantStats) bool

// criteriaRules maps an achievement's criteria key to its rule. Adding an
// achievement means adding a row here, not another switch arm.
var criteriaRules = map[string]CriteriaFunc{
	"first_evaluation": evaluationCountAtLeast(1),
	"evaluations_10":   evaluationCountAtLeast(10),
	"evaluations_50":   evaluationCountAtLeast(50),
	"evaluations_100":  evaluationCountAtLeast(100),
	"evaluations_250":  evaluationCountAtLeast(250),
	"evaluations_500":  evaluationCountAtLeast(500),

	"xp_100":   totalXpAtLeast(100),
	"xp_1000":  totalXpAtLeast(1000),
	"xp_5000":  totalXpAtLeast(5000),
	"xp_10000": totalXpAtLeast(10000),

	"five_star_streak_5":  fiveStarStreak(5),
	"five_star_streak_10": fiveStarStreak(10),

	"high_average":    averageAtLeast(4.5, 10),
	"perfect_average": averageAtLeast(4.9, 50),

	"season_winner": seasonWinner,
}

// LookupCriteria returns the rule registered for key.
func LookupCriteria(key string) (CriteriaFunc, bool) {
	rule, ok := criteriaRules[key]
	return rule, ok
}

func evaluationCountAtLeast(n int) CriteriaFunc {
	return func(stats domain.AttendantStats) bool {
		return stats.EvaluationCount >= n
	}
}

func totalXpAtLeast(n int) CriteriaFunc {
	return func(stats domain.AttendantStats) bool {
		return stats.TotalXp >= n
	}
}

// fiveStarStreak scans the full chronological rating history. The counter
// resets on any non-5 rating, so a qualifying run anywhere in the sequence
// satisfies the rule; looking at only the last k entries would miss it.
func fiveStarStreak(k int) CriteriaFunc {
	return func(stats domain.AttendantStats) bool {
		run := 0
		for _, rating := range stats.Ratings {
			if rating == 5 {
				run++
				if run >= k {
					return true
				}
			} else {
				run = 0
			}
		}
		return false
	}
}

// averageAtLeast requires a minimum sample size before the average counts.
// Below minSamples the rule is never satisfied, whatever the average.
func averageAtLeast(threshold float64, minSamples int) CriteriaFunc {
	return func(stats domain.AttendantStats) bool {
		if stats.EvaluationCount < minSamples {
			return false
		}
		return stats.AverageRating >= threshold
	}
}

func seasonWinner(stats domain.AttendantStats) bool {
	return stats.WonSeason
}
