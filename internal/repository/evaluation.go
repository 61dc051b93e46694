package repository

import (
	"context"
	"fmt"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

type EvaluationDAO interface {
	Insert(ctx context.Context, evaluation dao.Evaluation) (dao.Evaluation, error)
	RatingsChronological(ctx context.Context, attendantID uint, seasonID *uint) ([]int, error)
}

type EvaluationRepository struct {
	dao EvaluationDAO
}

func NewEvaluationRepository(dao EvaluationDAO) *EvaluationRepository {
	return &EvaluationRepository{
		dao: dao,
	}
}

func (r *EvaluationRepository) Create(ctx context.Context, evaluation domain.Evaluation) (domain.Evaluation, error) {
	created, err := r.dao.Insert(ctx, dao.Evaluation{
		AttendantID: evaluation.AttendantID,
		Rating:      evaluation.Rating,
		Date:        evaluation.Date,
		SeasonID:    evaluation.SeasonID,
	})
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return domain.Evaluation{
		ID:          created.ID,
		AttendantID: created.AttendantID,
		Rating:      created.Rating,
		Date:        created.Date,
		SeasonID:    created.SeasonID,
		CreatedAt:   created.CreatedAt,
	}, nil
}

func (r *EvaluationRepository) RatingsChronological(ctx context.Context, attendantID uint, seasonID *uint) ([]int, error) {
	ratings, err := r.dao.RatingsChronological(ctx, attendantID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.RatingsChronological -> %w", err)
	}

	return ratings, nil
}
