package service

import (
	"context"
	"fmt"

	"github.com/attenda/attenda-api/internal/domain"
)

// RankingService computes per-season leaderboards. Reads are pure
// aggregations over the immutable ledger; a read concurrent with an
// in-flight append may be slightly stale, which is acceptable.
type RankingService struct {
	xpRepo  XpRepository
	seasons SeasonRepository
}

func NewRankingService(xpRepo XpRepository, seasons SeasonRepository) *RankingService {
	return &RankingService{
		xpRepo:  xpRepo,
		seasons: seasons,
	}
}

// Leaderboard returns up to limit attendants ordered by season XP sum
// descending, ties broken by earliest first event so the order is
// deterministic across reads.
func (s *RankingService) Leaderboard(ctx context.Context, seasonID uint, limit int) ([]domain.RankingEntry, error) {
	if _, err := s.seasons.FindByID(ctx, seasonID); err != nil {
		return nil, fmt.Errorf("s.seasons.FindByID -> %w", err)
	}

	entries, err := s.xpRepo.SeasonTotals(ctx, seasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.xpRepo.SeasonTotals -> %w", err)
	}

	return entries, nil
}
