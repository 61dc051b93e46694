package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attenda/attenda-api/internal/domain"
)

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	xpRepo := newFakeXpRepo()
	seasons := &fakeSeasonRepo{seasons: []domain.Season{{ID: 3, Name: "June"}}, nextID: 3}
	svc := NewRankingService(xpRepo, seasons)

	seasonID := uint(3)
	base := mustDate(t, "2026-06-01T10:00:00Z")
	for _, event := range []domain.XpEvent{
		{AttendantID: 1, Points: 40, SeasonID: &seasonID, Date: base},
		{AttendantID: 2, Points: 100, SeasonID: &seasonID, Date: base.Add(time.Hour)},
		{AttendantID: 3, Points: 40, SeasonID: &seasonID, Date: base.Add(2 * time.Hour)},
		{AttendantID: 1, Points: 10, SeasonID: &seasonID, Date: base.Add(3 * time.Hour)},
	} {
		_, err := xpRepo.AppendEvent(ctx, event)
		require.NoError(t, err)
	}

	t.Run("orders by total with earliest-first tie-break", func(t *testing.T) {
		entries, err := svc.Leaderboard(ctx, seasonID, 0)

		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, uint(2), entries[0].AttendantID)
		assert.Equal(t, 100, entries[0].TotalPoints)
		assert.Equal(t, uint(1), entries[1].AttendantID)
		assert.Equal(t, 50, entries[1].TotalPoints)
		assert.Equal(t, uint(3), entries[2].AttendantID)
	})

	t.Run("limit truncates", func(t *testing.T) {
		entries, err := svc.Leaderboard(ctx, seasonID, 1)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint(2), entries[0].AttendantID)
	})

	t.Run("unknown season", func(t *testing.T) {
		_, err := svc.Leaderboard(ctx, 99, 0)

		assert.ErrorIs(t, err, ErrSeasonNotFound)
	})
}

func TestLeaderboardTieBreak(t *testing.T) {
	ctx := context.Background()
	xpRepo := newFakeXpRepo()
	seasons := &fakeSeasonRepo{seasons: []domain.Season{{ID: 3, Name: "June"}}, nextID: 3}
	svc := NewRankingService(xpRepo, seasons)

	seasonID := uint(3)
	base := mustDate(t, "2026-06-01T10:00:00Z")
	for _, event := range []domain.XpEvent{
		{AttendantID: 2, Points: 40, SeasonID: &seasonID, Date: base.Add(time.Hour)},
		{AttendantID: 1, Points: 40, SeasonID: &seasonID, Date: base},
	} {
		_, err := xpRepo.AppendEvent(ctx, event)
		require.NoError(t, err)
	}

	entries, err := svc.Leaderboard(ctx, seasonID, 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(1), entries[0].AttendantID, "earlier first event wins the tie")
	assert.Equal(t, uint(2), entries[1].AttendantID)
}
