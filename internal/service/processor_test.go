package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attenda/attenda-api/internal/domain"
)

func newProcessorFixture(t *testing.T, attendantIDs ...uint) (*ProcessorService, achievementFixture) {
	t.Helper()

	fx := newAchievementFixture()
	processor := NewProcessorService(fx.svc, newFakeAttendantRepo(attendantIDs...))
	return processor, fx
}

func TestProcessAttendant(t *testing.T) {
	ctx := context.Background()

	t.Run("unlocks everything the attendant qualifies for", func(t *testing.T) {
		processor, fx := newProcessorFixture(t, 1)
		fx.addEvaluations(t, 1, 5, 5, 5, 5, 5)

		first, err := fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "First steps", XpReward: 50, CriteriaKey: "first_evaluation", Active: true,
		})
		require.NoError(t, err)
		streak, err := fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "On fire", XpReward: 100, CriteriaKey: "five_star_streak_5", Active: true,
		})
		require.NoError(t, err)
		_, err = fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "Marathon", XpReward: 200, CriteriaKey: "evaluations_100", Active: true,
		})
		require.NoError(t, err)

		result, err := processor.ProcessAttendant(ctx, 1, nil, false)

		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{first.ID, streak.ID}, result.Unlocked)
		assert.Equal(t, 0, result.AlreadyUnlocked)
		assert.Equal(t, 1, result.NotEligible)
	})

	t.Run("rerunning is idempotent", func(t *testing.T) {
		processor, fx := newProcessorFixture(t, 1)
		fx.addEvaluations(t, 1, 5)

		_, err := fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "First steps", XpReward: 50, CriteriaKey: "first_evaluation", Active: true,
		})
		require.NoError(t, err)

		first, err := processor.ProcessAttendant(ctx, 1, nil, false)
		require.NoError(t, err)
		require.Len(t, first.Unlocked, 1)
		eventsAfterFirst := len(fx.xpRepo.events)

		second, err := processor.ProcessAttendant(ctx, 1, nil, false)

		require.NoError(t, err)
		assert.Empty(t, second.Unlocked)
		assert.Equal(t, 1, second.AlreadyUnlocked)
		assert.Len(t, fx.xpRepo.events, eventsAfterFirst, "no duplicate reward events")
	})

	t.Run("force reprocess recomputes the reward instead of stacking it", func(t *testing.T) {
		processor, fx := newProcessorFixture(t, 1)
		fx.addEvaluations(t, 1, 5)

		config, err := fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "First steps", XpReward: 50, CriteriaKey: "first_evaluation", Active: true,
		})
		require.NoError(t, err)

		_, err = processor.ProcessAttendant(ctx, 1, nil, false)
		require.NoError(t, err)

		// Reward raised after the first unlock.
		fx.repo.mu.Lock()
		fx.repo.configs[0].XpReward = 80
		fx.repo.mu.Unlock()

		result, err := processor.ProcessAttendant(ctx, 1, nil, true)

		require.NoError(t, err)
		assert.Equal(t, []uint{config.ID}, result.Unlocked)

		var achievementEvents []domain.XpEvent
		for _, event := range fx.xpRepo.events {
			if event.Type == domain.XpEventAchievement {
				achievementEvents = append(achievementEvents, event)
			}
		}
		require.Len(t, achievementEvents, 1, "old reward event removed, one recomputed")
		assert.Equal(t, 80, achievementEvents[0].Points)
	})

	t.Run("unknown attendant", func(t *testing.T) {
		processor, _ := newProcessorFixture(t)

		_, err := processor.ProcessAttendant(ctx, 99, nil, false)

		assert.ErrorIs(t, err, ErrAttendantNotFound)
	})
}

func TestProcessSeason(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to every active attendant", func(t *testing.T) {
		processor, fx := newProcessorFixture(t, 1, 2)
		seasonID := uint(5)
		for _, attendantID := range []uint{1, 2} {
			_, err := fx.evalRepo.Create(ctx, domain.Evaluation{
				AttendantID: attendantID,
				Rating:      5,
				SeasonID:    &seasonID,
			})
			require.NoError(t, err)
		}

		_, err := fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "First steps", XpReward: 50, CriteriaKey: "first_evaluation", Active: true,
		})
		require.NoError(t, err)

		report, err := processor.ProcessSeason(ctx, seasonID, nil, false)

		require.NoError(t, err)
		assert.Len(t, report.Results, 2)
		assert.Empty(t, report.Errors)
		for _, result := range report.Results {
			assert.Len(t, result.Unlocked, 1)
		}
	})

	t.Run("one failing attendant does not abort the batch", func(t *testing.T) {
		processor, fx := newProcessorFixture(t, 1)
		seasonID := uint(5)

		_, err := fx.svc.CreateConfig(ctx, domain.AchievementConfig{
			Title: "First steps", XpReward: 50, CriteriaKey: "first_evaluation", Active: true,
		})
		require.NoError(t, err)

		report, err := processor.ProcessSeason(ctx, seasonID, []uint{99, 1}, false)

		require.NoError(t, err)
		require.Len(t, report.Errors, 1)
		assert.Equal(t, uint(99), report.Errors[0].AttendantID)
		assert.Len(t, report.Results, 1)
		assert.Equal(t, uint(1), report.Results[0].AttendantID)
	})
}
