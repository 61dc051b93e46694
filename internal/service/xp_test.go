package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attenda/attenda-api/internal/config"
	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

type staticSettings struct {
	conf config.GamificationConfig
}

func (s staticSettings) GamificationSettings() config.GamificationConfig {
	return s.conf
}

func defaultSettings() staticSettings {
	return staticSettings{
		conf: config.GamificationConfig{
			GlobalMultiplier: 1,
			RatingPoints:     []int{0, 5, 10, 20, 40},
			Timezone:         "UTC",
			Grant: config.GrantConfig{
				MinPointsPerGrant: 1,
				MaxPointsPerGrant: 100,
				DailyPointsLimit:  1000,
				DailyGrantLimit:   20,
				CooldownMinutes:   5,
			},
		},
	}
}

type fakeRegistry struct {
	season domain.Season
	found  bool
}

func (f fakeRegistry) ResolveActive(_ context.Context, _ time.Time) (domain.Season, bool, error) {
	return f.season, f.found, nil
}

type fakeAttendantRepo struct {
	attendants map[uint]domain.Attendant
}

func newFakeAttendantRepo(ids ...uint) *fakeAttendantRepo {
	f := &fakeAttendantRepo{attendants: make(map[uint]domain.Attendant)}
	for _, id := range ids {
		f.attendants[id] = domain.Attendant{ID: id, Active: true}
	}
	return f
}

func (f *fakeAttendantRepo) Create(_ context.Context, attendant domain.Attendant) (domain.Attendant, error) {
	attendant.ID = uint(len(f.attendants) + 1)
	f.attendants[attendant.ID] = attendant
	return attendant, nil
}

func (f *fakeAttendantRepo) FindByID(_ context.Context, id uint) (domain.Attendant, error) {
	attendant, ok := f.attendants[id]
	if !ok {
		return domain.Attendant{}, repository.ErrAttendantNotFound
	}
	return attendant, nil
}

func (f *fakeAttendantRepo) ListActive(_ context.Context) ([]domain.Attendant, error) {
	var active []domain.Attendant
	for _, attendant := range f.attendants {
		if attendant.Active {
			active = append(active, attendant)
		}
	}
	return active, nil
}

type fakeEvaluationRepo struct {
	evaluations []domain.Evaluation
}

func (f *fakeEvaluationRepo) Create(_ context.Context, evaluation domain.Evaluation) (domain.Evaluation, error) {
	evaluation.ID = uint(len(f.evaluations) + 1)
	f.evaluations = append(f.evaluations, evaluation)
	return evaluation, nil
}

func (f *fakeEvaluationRepo) RatingsChronological(_ context.Context, attendantID uint, seasonID *uint) ([]int, error) {
	var ratings []int
	for _, evaluation := range f.evaluations {
		if evaluation.AttendantID != attendantID {
			continue
		}
		if seasonID != nil && (evaluation.SeasonID == nil || *evaluation.SeasonID != *seasonID) {
			continue
		}
		ratings = append(ratings, evaluation.Rating)
	}
	return ratings, nil
}

type fakeXpRepo struct {
	events   []domain.XpEvent
	xpTypes  map[uint]domain.XpType
	grantErr error
}

func newFakeXpRepo() *fakeXpRepo {
	return &fakeXpRepo{xpTypes: make(map[uint]domain.XpType)}
}

func (f *fakeXpRepo) AppendEvent(_ context.Context, event domain.XpEvent) (domain.XpEvent, error) {
	event.ID = uint(len(f.events) + 1)
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeXpRepo) TotalXp(_ context.Context, attendantID uint, seasonID *uint) (int, error) {
	total := 0
	for _, event := range f.events {
		if event.AttendantID != attendantID {
			continue
		}
		if seasonID != nil && (event.SeasonID == nil || *event.SeasonID != *seasonID) {
			continue
		}
		total += event.Points
	}
	return total, nil
}

func (f *fakeXpRepo) SeasonTotals(_ context.Context, seasonID uint, limit int) ([]domain.RankingEntry, error) {
	totals := make(map[uint]*domain.RankingEntry)
	var order []uint
	for _, event := range f.events {
		if event.SeasonID == nil || *event.SeasonID != seasonID {
			continue
		}
		entry, ok := totals[event.AttendantID]
		if !ok {
			entry = &domain.RankingEntry{AttendantID: event.AttendantID, FirstEvent: event.Date}
			totals[event.AttendantID] = entry
			order = append(order, event.AttendantID)
		}
		entry.TotalPoints += event.Points
		if event.Date.Before(entry.FirstEvent) {
			entry.FirstEvent = event.Date
		}
	}

	var entries []domain.RankingEntry
	for _, id := range order {
		entries = append(entries, *totals[id])
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if b.TotalPoints > a.TotalPoints ||
				(b.TotalPoints == a.TotalPoints && b.FirstEvent.Before(a.FirstEvent)) {
				entries[i], entries[j] = b, a
			}
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeXpRepo) AppendManualGrant(ctx context.Context, event domain.XpEvent, _ domain.GrantLimits, _, _ time.Time) (domain.XpEvent, error) {
	if f.grantErr != nil {
		return domain.XpEvent{}, f.grantErr
	}
	return f.AppendEvent(ctx, event)
}

func (f *fakeXpRepo) CreateXpType(_ context.Context, xpType domain.XpType) (domain.XpType, error) {
	xpType.ID = uint(len(f.xpTypes) + 1)
	f.xpTypes[xpType.ID] = xpType
	return xpType, nil
}

func (f *fakeXpRepo) FindXpTypeByID(_ context.Context, id uint) (domain.XpType, error) {
	xpType, ok := f.xpTypes[id]
	if !ok {
		return domain.XpType{}, repository.ErrXpTypeNotFound
	}
	return xpType, nil
}

func (f *fakeXpRepo) ListXpTypes(_ context.Context) ([]domain.XpType, error) {
	var xpTypes []domain.XpType
	for _, xpType := range f.xpTypes {
		xpTypes = append(xpTypes, xpType)
	}
	return xpTypes, nil
}

func TestRecordEvaluation(t *testing.T) {
	ctx := context.Background()
	seasonStart := mustDate(t, "2026-06-01T00:00:00Z")

	t.Run("stamps the covering season and applies its multiplier", func(t *testing.T) {
		xpRepo := newFakeXpRepo()
		evalRepo := &fakeEvaluationRepo{}
		registry := fakeRegistry{
			season: domain.Season{ID: 7, StartDate: seasonStart, XpMultiplier: 2},
			found:  true,
		}
		svc := NewXpService(xpRepo, evalRepo, newFakeAttendantRepo(1), registry, defaultSettings())

		event, err := svc.RecordEvaluation(ctx, 1, 5, mustDate(t, "2026-06-10T12:00:00Z"))

		require.NoError(t, err)
		assert.Equal(t, 40, event.BasePoints)
		assert.Equal(t, 80, event.Points)
		require.NotNil(t, event.SeasonID)
		assert.Equal(t, uint(7), *event.SeasonID)
		assert.Equal(t, domain.XpEventEvaluation, event.Type)
		require.NotNil(t, event.RelatedID, "event links back to its evaluation")
		assert.Len(t, evalRepo.evaluations, 1)
	})

	t.Run("no covering season leaves the event unscoped at neutral multiplier", func(t *testing.T) {
		xpRepo := newFakeXpRepo()
		svc := NewXpService(xpRepo, &fakeEvaluationRepo{}, newFakeAttendantRepo(1), fakeRegistry{}, defaultSettings())

		event, err := svc.RecordEvaluation(ctx, 1, 3, mustDate(t, "2026-06-10T12:00:00Z"))

		require.NoError(t, err)
		assert.Nil(t, event.SeasonID)
		assert.Equal(t, 10, event.Points)
	})

	t.Run("zero season multiplier zeroes the points without falling back", func(t *testing.T) {
		registry := fakeRegistry{
			season: domain.Season{ID: 7, StartDate: seasonStart, XpMultiplier: 0},
			found:  true,
		}
		svc := NewXpService(newFakeXpRepo(), &fakeEvaluationRepo{}, newFakeAttendantRepo(1), registry, defaultSettings())

		event, err := svc.RecordEvaluation(ctx, 1, 5, mustDate(t, "2026-06-10T12:00:00Z"))

		require.NoError(t, err)
		assert.Equal(t, 0, event.Points)
	})

	t.Run("rating outside the configured table", func(t *testing.T) {
		svc := NewXpService(newFakeXpRepo(), &fakeEvaluationRepo{}, newFakeAttendantRepo(1), fakeRegistry{}, defaultSettings())

		_, err := svc.RecordEvaluation(ctx, 1, 6, time.Now())

		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("unknown attendant", func(t *testing.T) {
		svc := NewXpService(newFakeXpRepo(), &fakeEvaluationRepo{}, newFakeAttendantRepo(), fakeRegistry{}, defaultSettings())

		_, err := svc.RecordEvaluation(ctx, 99, 5, time.Now())

		assert.ErrorIs(t, err, ErrAttendantNotFound)
	})
}

func TestGrantXp(t *testing.T) {
	ctx := context.Background()
	activeRegistry := fakeRegistry{
		season: domain.Season{ID: 3, XpMultiplier: 1},
		found:  true,
	}

	t.Run("appends a manual grant with granter attribution", func(t *testing.T) {
		xpRepo := newFakeXpRepo()
		xpType, err := xpRepo.CreateXpType(ctx, domain.XpType{Name: "team spirit", Points: 25, Active: true})
		require.NoError(t, err)

		svc := NewXpService(xpRepo, &fakeEvaluationRepo{}, newFakeAttendantRepo(1), activeRegistry, defaultSettings())

		event, err := svc.GrantXp(ctx, 1, xpType.ID, 42, "helped with the backlog")

		require.NoError(t, err)
		assert.Equal(t, 25, event.Points)
		assert.Equal(t, domain.XpEventManualGrant, event.Type)
		require.NotNil(t, event.GranterID)
		assert.Equal(t, uint(42), *event.GranterID)
		require.NotNil(t, event.SeasonID)
		assert.Equal(t, uint(3), *event.SeasonID)
		assert.Contains(t, event.Reason, "helped with the backlog")
	})

	t.Run("requires an active season", func(t *testing.T) {
		xpRepo := newFakeXpRepo()
		xpType, err := xpRepo.CreateXpType(ctx, domain.XpType{Name: "team spirit", Points: 25})
		require.NoError(t, err)

		svc := NewXpService(xpRepo, &fakeEvaluationRepo{}, newFakeAttendantRepo(1), fakeRegistry{}, defaultSettings())

		_, err = svc.GrantXp(ctx, 1, xpType.ID, 42, "")

		assert.ErrorIs(t, err, ErrNoActiveSeason)
	})

	t.Run("rejects grants outside the per-grant range", func(t *testing.T) {
		xpRepo := newFakeXpRepo()
		xpType, err := xpRepo.CreateXpType(ctx, domain.XpType{Name: "jackpot", Points: 500})
		require.NoError(t, err)

		svc := NewXpService(xpRepo, &fakeEvaluationRepo{}, newFakeAttendantRepo(1), activeRegistry, defaultSettings())

		_, err = svc.GrantXp(ctx, 1, xpType.ID, 42, "")

		assert.ErrorIs(t, err, ErrGrantOutsideSpan)
	})

	t.Run("surfaces the quota rejection with its metadata", func(t *testing.T) {
		xpRepo := newFakeXpRepo()
		xpType, err := xpRepo.CreateXpType(ctx, domain.XpType{Name: "team spirit", Points: 50})
		require.NoError(t, err)

		xpRepo.grantErr = &dao.GrantQuotaError{Kind: "daily_points", Limit: 1000, Current: 980}
		svc := NewXpService(xpRepo, &fakeEvaluationRepo{}, newFakeAttendantRepo(1), activeRegistry, defaultSettings())

		_, err = svc.GrantXp(ctx, 1, xpType.ID, 42, "")

		quotaErr, exceeded := IsQuotaExceeded(err)
		require.True(t, exceeded)
		assert.Equal(t, "daily_points", quotaErr.Kind)
		assert.Equal(t, 1000, quotaErr.Limit)
		assert.Equal(t, 980, quotaErr.Current)
	})

	t.Run("unknown xp type", func(t *testing.T) {
		svc := NewXpService(newFakeXpRepo(), &fakeEvaluationRepo{}, newFakeAttendantRepo(1), activeRegistry, defaultSettings())

		_, err := svc.GrantXp(ctx, 1, 99, 42, "")

		assert.ErrorIs(t, err, ErrXpTypeNotFound)
	})
}

func TestTotalXpSumsTheLedger(t *testing.T) {
	ctx := context.Background()
	xpRepo := newFakeXpRepo()
	svc := NewXpService(xpRepo, &fakeEvaluationRepo{}, newFakeAttendantRepo(1), fakeRegistry{}, defaultSettings())

	seasonID := uint(3)
	for _, event := range []domain.XpEvent{
		{AttendantID: 1, Points: 10, SeasonID: &seasonID},
		{AttendantID: 1, Points: 20, SeasonID: &seasonID},
		{AttendantID: 1, Points: 40},
	} {
		_, err := xpRepo.AppendEvent(ctx, event)
		require.NoError(t, err)
	}

	lifetime, err := svc.TotalXp(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 70, lifetime)

	seasonal, err := svc.TotalXp(ctx, 1, &seasonID)
	require.NoError(t, err)
	assert.Equal(t, 30, seasonal)
}
