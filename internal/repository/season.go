package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

var (
	ErrSeasonNotFound  = dao.ErrSeasonNotFound
	ErrSeasonHasEvents = dao.ErrSeasonHasEvents
)

type SeasonDAO interface {
	Insert(ctx context.Context, season dao.Season) (dao.Season, error)
	Update(ctx context.Context, season dao.Season) (dao.Season, error)
	FindByID(ctx context.Context, id uint) (dao.Season, error)
	List(ctx context.Context) ([]dao.Season, error)
	ListActive(ctx context.Context) ([]dao.Season, error)
	ListFinished(ctx context.Context, now time.Time) ([]dao.Season, error)
	Delete(ctx context.Context, id uint, force bool) error
}

type SeasonRepository struct {
	dao SeasonDAO
}

func NewSeasonRepository(dao SeasonDAO) *SeasonRepository {
	return &SeasonRepository{
		dao: dao,
	}
}

func (r *SeasonRepository) Create(ctx context.Context, season domain.Season) (domain.Season, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(season))
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *SeasonRepository) Update(ctx context.Context, season domain.Season) (domain.Season, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(season))
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *SeasonRepository) FindByID(ctx context.Context, id uint) (domain.Season, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Season{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]domain.Season, error) {
	found, err := r.dao.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *SeasonRepository) ListActive(ctx context.Context) ([]domain.Season, error) {
	found, err := r.dao.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListActive -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *SeasonRepository) ListFinished(ctx context.Context, now time.Time) ([]domain.Season, error) {
	found, err := r.dao.ListFinished(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListFinished -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *SeasonRepository) Delete(ctx context.Context, id uint, force bool) error {
	if err := r.dao.Delete(ctx, id, force); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *SeasonRepository) domainToDao(s domain.Season) dao.Season {
	return dao.Season{
		ID:           s.ID,
		Name:         s.Name,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		Active:       s.Active,
		XpMultiplier: s.XpMultiplier,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (r *SeasonRepository) daoToDomain(s dao.Season) domain.Season {
	return domain.Season{
		ID:           s.ID,
		Name:         s.Name,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		Active:       s.Active,
		XpMultiplier: s.XpMultiplier,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (r *SeasonRepository) daosToDomain(daoSeasons []dao.Season) []domain.Season {
	seasons := make([]domain.Season, len(daoSeasons))
	for i, s := range daoSeasons {
		seasons[i] = r.daoToDomain(s)
	}
	return seasons
}
