package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository"
)

var (
	ErrAchievementNotFound = repository.ErrAchievementNotFound
	ErrUnknownCriteria     = errors.New("unknown criteria key")
)

type AchievementRepository interface {
	CreateConfig(ctx context.Context, config domain.AchievementConfig) (domain.AchievementConfig, error)
	FindConfigByID(ctx context.Context, id uint) (domain.AchievementConfig, error)
	ListActiveConfigs(ctx context.Context) ([]domain.AchievementConfig, error)
	ListUnlocksByAttendant(ctx context.Context, attendantID uint) ([]domain.UnlockedAchievement, error)
	HasUnlock(ctx context.Context, attendantID, achievementID uint, seasonID *uint) (bool, error)
	CreateUnlockWithEvent(ctx context.Context, unlock domain.UnlockedAchievement, event domain.XpEvent) (domain.UnlockedAchievement, error)
	DeleteUnlockWithEvent(ctx context.Context, attendantID, achievementID uint, seasonID *uint) error
}

// SeasonReader is the registry slice the evaluator needs beyond active
// resolution: the finished seasons considered by the season-winner rule.
type SeasonReader interface {
	SeasonRegistry
	ListFinishedSeasons(ctx context.Context, now time.Time) ([]domain.Season, error)
}

// AchievementService is the achievement evaluator and unlock coordinator:
// it aggregates attendant stats, runs the pure criteria rules over them,
// and applies unlock decisions with at-most-once semantics through the
// storage uniqueness constraint.
type AchievementService struct {
	repo     AchievementRepository
	xpRepo   XpRepository
	evalRepo EvaluationRepository
	seasons  SeasonReader
	settings GamificationSettings
}

func NewAchievementService(repo AchievementRepository, xpRepo XpRepository, evalRepo EvaluationRepository, seasons SeasonReader, settings GamificationSettings) *AchievementService {
	return &AchievementService{
		repo:     repo,
		xpRepo:   xpRepo,
		evalRepo: evalRepo,
		seasons:  seasons,
		settings: settings,
	}
}

// BuildStats aggregates the attendant's ledger and evaluation data, either
// lifetime (seasonID nil) or bounded to one season. The rules downstream
// are oblivious to which slice they received.
func (s *AchievementService) BuildStats(ctx context.Context, attendantID uint, seasonID *uint) (domain.AttendantStats, error) {
	ratings, err := s.evalRepo.RatingsChronological(ctx, attendantID, seasonID)
	if err != nil {
		return domain.AttendantStats{}, fmt.Errorf("s.evalRepo.RatingsChronological -> %w", err)
	}

	totalXp, err := s.xpRepo.TotalXp(ctx, attendantID, seasonID)
	if err != nil {
		return domain.AttendantStats{}, fmt.Errorf("s.xpRepo.TotalXp -> %w", err)
	}

	average := 0.0
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		average = float64(sum) / float64(len(ratings))
	}

	wonSeason, err := s.wonFinishedSeason(ctx, attendantID, seasonID)
	if err != nil {
		return domain.AttendantStats{}, err
	}

	return domain.AttendantStats{
		AttendantID:     attendantID,
		EvaluationCount: len(ratings),
		AverageRating:   average,
		TotalXp:         totalXp,
		Ratings:         ratings,
		WonSeason:       wonSeason,
	}, nil
}

// TryUnlock re-checks eligibility and then inserts the unlock under its
// uniqueness constraint. Losing the insert race to a concurrent attempt is
// reported as AlreadyUnlocked, never as an error; this check-then-insert
// protocol is what makes unlocking at-most-once without external locks.
func (s *AchievementService) TryUnlock(ctx context.Context, attendantID uint, achievement domain.AchievementConfig, seasonID *uint) (domain.UnlockOutcome, error) {
	rule, ok := LookupCriteria(achievement.CriteriaKey)
	if !ok {
		return domain.OutcomeNotEligible, fmt.Errorf("%w: %q (achievement %d)", ErrUnknownCriteria, achievement.CriteriaKey, achievement.ID)
	}

	unlocked, err := s.repo.HasUnlock(ctx, attendantID, achievement.ID, seasonID)
	if err != nil {
		return domain.OutcomeNotEligible, fmt.Errorf("s.repo.HasUnlock -> %w", err)
	}
	if unlocked {
		return domain.OutcomeAlreadyUnlocked, nil
	}

	stats, err := s.BuildStats(ctx, attendantID, seasonID)
	if err != nil {
		return domain.OutcomeNotEligible, fmt.Errorf("s.BuildStats -> %w", err)
	}

	if !rule(stats) {
		return domain.OutcomeNotEligible, nil
	}

	settings := s.settings.GamificationSettings()
	now := time.Now()

	// The reward event is stamped with the season active at unlock time,
	// which may differ from the unlock's own scope.
	eventSeasonID, seasonMultiplier, err := s.eventSeason(ctx, now)
	if err != nil {
		return domain.OutcomeNotEligible, err
	}

	_, err = s.repo.CreateUnlockWithEvent(ctx, domain.UnlockedAchievement{
		AttendantID:   attendantID,
		AchievementID: achievement.ID,
		SeasonID:      seasonID,
		UnlockedAt:    now,
		XpGained:      domain.EffectivePoints(achievement.XpReward, settings.GlobalMultiplier, seasonMultiplier),
	}, domain.XpEvent{
		AttendantID: attendantID,
		BasePoints:  achievement.XpReward,
		Multiplier:  settings.GlobalMultiplier * seasonMultiplier,
		Points:      domain.EffectivePoints(achievement.XpReward, settings.GlobalMultiplier, seasonMultiplier),
		Reason:      fmt.Sprintf("achievement unlocked: %s", achievement.Title),
		Type:        domain.XpEventAchievement,
		Date:        now,
		SeasonID:    eventSeasonID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAchievementAlreadyUnlocked) {
			// Lost the race with a concurrent unlock of the same scope.
			zap.L().Debug("unlock race lost",
				zap.Uint("attendant_id", attendantID),
				zap.Uint("achievement_id", achievement.ID))
			return domain.OutcomeAlreadyUnlocked, nil
		}

		return domain.OutcomeNotEligible, fmt.Errorf("s.repo.CreateUnlockWithEvent -> %w", err)
	}

	return domain.OutcomeUnlocked, nil
}

// ResetUnlock removes an unlock and its paired reward event so a later
// attempt recomputes the reward. This is the only path that removes ledger
// state; both rows go in one transaction to keep totals honest.
func (s *AchievementService) ResetUnlock(ctx context.Context, attendantID, achievementID uint, seasonID *uint) error {
	err := s.repo.DeleteUnlockWithEvent(ctx, attendantID, achievementID, seasonID)
	if err != nil && !errors.Is(err, repository.ErrUnlockNotFound) {
		return fmt.Errorf("s.repo.DeleteUnlockWithEvent -> %w", err)
	}

	return nil
}

func (s *AchievementService) CreateConfig(ctx context.Context, config domain.AchievementConfig) (domain.AchievementConfig, error) {
	if _, ok := LookupCriteria(config.CriteriaKey); !ok {
		return domain.AchievementConfig{}, fmt.Errorf("%w: %q", ErrUnknownCriteria, config.CriteriaKey)
	}

	created, err := s.repo.CreateConfig(ctx, config)
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("s.repo.CreateConfig -> %w", err)
	}

	return created, nil
}

func (s *AchievementService) ListActiveConfigs(ctx context.Context) ([]domain.AchievementConfig, error) {
	configs, err := s.repo.ListActiveConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListActiveConfigs -> %w", err)
	}

	return configs, nil
}

// AchievementStatuses reports every active achievement with the
// attendant's unlock state, for the status query surface.
func (s *AchievementService) AchievementStatuses(ctx context.Context, attendantID uint) ([]domain.AchievementStatus, error) {
	configs, err := s.repo.ListActiveConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListActiveConfigs -> %w", err)
	}

	unlocks, err := s.repo.ListUnlocksByAttendant(ctx, attendantID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListUnlocksByAttendant -> %w", err)
	}

	unlockedBy := make(map[uint]domain.UnlockedAchievement, len(unlocks))
	for _, u := range unlocks {
		unlockedBy[u.AchievementID] = u
	}

	statuses := make([]domain.AchievementStatus, len(configs))
	for i, cfg := range configs {
		status := domain.AchievementStatus{Achievement: cfg}
		if u, ok := unlockedBy[cfg.ID]; ok {
			unlockedAt := u.UnlockedAt
			status.Unlocked = true
			status.UnlockedAt = &unlockedAt
			status.XpGained = u.XpGained
		}
		statuses[i] = status
	}

	return statuses, nil
}

// wonFinishedSeason reports whether the attendant was the single top
// scorer of the bounding season (when season-scoped and that season is
// over) or of any finished season (lifetime scope).
func (s *AchievementService) wonFinishedSeason(ctx context.Context, attendantID uint, seasonID *uint) (bool, error) {
	now := time.Now()

	finished, err := s.seasons.ListFinishedSeasons(ctx, now)
	if err != nil {
		return false, fmt.Errorf("s.seasons.ListFinishedSeasons -> %w", err)
	}

	for _, season := range finished {
		if seasonID != nil && season.ID != *seasonID {
			continue
		}

		// Two rows are enough to decide sole leadership.
		top, err := s.xpRepo.SeasonTotals(ctx, season.ID, 2)
		if err != nil {
			return false, fmt.Errorf("s.xpRepo.SeasonTotals -> %w", err)
		}
		if len(top) == 0 || top[0].AttendantID != attendantID {
			continue
		}
		if len(top) > 1 && top[1].TotalPoints == top[0].TotalPoints {
			continue // shared first place is no win
		}

		return true, nil
	}

	return false, nil
}

// eventSeason resolves the season stamp for a reward event written now.
func (s *AchievementService) eventSeason(ctx context.Context, now time.Time) (*uint, float64, error) {
	season, found, err := s.seasons.ResolveActive(ctx, now)
	if err != nil {
		return nil, 0, fmt.Errorf("s.seasons.ResolveActive -> %w", err)
	}
	if !found {
		return nil, 1, nil
	}

	seasonID := season.ID
	return &seasonID, season.XpMultiplier, nil
}
