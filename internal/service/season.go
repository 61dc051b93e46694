package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository"
)

var (
	ErrSeasonNotFound     = repository.ErrSeasonNotFound
	ErrSeasonHasEvents    = repository.ErrSeasonHasEvents
	ErrInvalidSeasonDates = errors.New("season start date must be before end date")
	ErrSeasonOverlap      = errors.New("season overlaps another active season")
)

type SeasonRepository interface {
	Create(ctx context.Context, season domain.Season) (domain.Season, error)
	Update(ctx context.Context, season domain.Season) (domain.Season, error)
	FindByID(ctx context.Context, id uint) (domain.Season, error)
	List(ctx context.Context) ([]domain.Season, error)
	ListActive(ctx context.Context) ([]domain.Season, error)
	ListFinished(ctx context.Context, now time.Time) ([]domain.Season, error)
	Delete(ctx context.Context, id uint, force bool) error
}

// SeasonService is the season registry: the single owner of season
// lifecycle, overlap validation and active-season resolution. Every other
// component asks it which season covers a given instant instead of
// filtering seasons itself.
type SeasonService struct {
	repo SeasonRepository
}

func NewSeasonService(repo SeasonRepository) *SeasonService {
	return &SeasonService{
		repo: repo,
	}
}

// ResolveActive returns the active season whose interval contains at, or
// false when none does. Multiple matching active seasons are a data
// integrity violation the registry tolerates: the latest start date wins.
func (s *SeasonService) ResolveActive(ctx context.Context, at time.Time) (domain.Season, bool, error) {
	seasons, err := s.repo.ListActive(ctx)
	if err != nil {
		return domain.Season{}, false, fmt.Errorf("s.repo.ListActive -> %w", err)
	}

	return resolveActive(seasons, at)
}

func resolveActive(seasons []domain.Season, at time.Time) (domain.Season, bool, error) {
	var current domain.Season
	found := false
	for _, season := range seasons {
		if !season.Contains(at) {
			continue
		}
		if !found || season.StartDate.After(current.StartDate) {
			current = season
			found = true
		}
	}

	return current, found, nil
}

func (s *SeasonService) CreateSeason(ctx context.Context, season domain.Season) (domain.Season, error) {
	if err := s.validate(ctx, season); err != nil {
		return domain.Season{}, err
	}

	created, err := s.repo.Create(ctx, season)
	if err != nil {
		return domain.Season{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *SeasonService) UpdateSeason(ctx context.Context, season domain.Season) (domain.Season, error) {
	if _, err := s.repo.FindByID(ctx, season.ID); err != nil {
		return domain.Season{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err := s.validate(ctx, season); err != nil {
		return domain.Season{}, err
	}

	updated, err := s.repo.Update(ctx, season)
	if err != nil {
		return domain.Season{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *SeasonService) GetSeason(ctx context.Context, id uint) (domain.Season, error) {
	season, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Season{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return season, nil
}

func (s *SeasonService) ListSeasons(ctx context.Context) ([]domain.Season, error) {
	seasons, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return seasons, nil
}

func (s *SeasonService) ListFinishedSeasons(ctx context.Context, now time.Time) ([]domain.Season, error) {
	seasons, err := s.repo.ListFinished(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListFinished -> %w", err)
	}

	return seasons, nil
}

func (s *SeasonService) DeleteSeason(ctx context.Context, id uint, force bool) error {
	if err := s.repo.Delete(ctx, id, force); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *SeasonService) validate(ctx context.Context, season domain.Season) error {
	if !season.StartDate.Before(season.EndDate) {
		return ErrInvalidSeasonDates
	}

	if !season.Active {
		return nil
	}

	existing, err := s.repo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("s.repo.ListActive -> %w", err)
	}

	if err := ValidateNoOverlap(season, existing); err != nil {
		return err
	}

	return nil
}

// ValidateNoOverlap rejects a candidate active season whose interval
// intersects any other active season's interval.
func ValidateNoOverlap(candidate domain.Season, activeSeasons []domain.Season) error {
	for _, existing := range activeSeasons {
		if existing.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(existing) {
			return fmt.Errorf("%w: season %d (%s)", ErrSeasonOverlap, existing.ID, existing.Name)
		}
	}

	return nil
}
