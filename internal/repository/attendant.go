package repository

import (
	"context"
	"fmt"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

var ErrAttendantNotFound = dao.ErrAttendantNotFound

type AttendantDAO interface {
	Insert(ctx context.Context, attendant dao.Attendant) (dao.Attendant, error)
	FindByID(ctx context.Context, id uint) (dao.Attendant, error)
	ListActive(ctx context.Context) ([]dao.Attendant, error)
}

type AttendantRepository struct {
	dao AttendantDAO
}

func NewAttendantRepository(dao AttendantDAO) *AttendantRepository {
	return &AttendantRepository{
		dao: dao,
	}
}

func (r *AttendantRepository) Create(ctx context.Context, attendant domain.Attendant) (domain.Attendant, error) {
	created, err := r.dao.Insert(ctx, dao.Attendant{
		Name:   attendant.Name,
		Email:  attendant.Email,
		Active: attendant.Active,
	})
	if err != nil {
		return domain.Attendant{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AttendantRepository) FindByID(ctx context.Context, id uint) (domain.Attendant, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Attendant{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AttendantRepository) ListActive(ctx context.Context) ([]domain.Attendant, error) {
	found, err := r.dao.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListActive -> %w", err)
	}

	attendants := make([]domain.Attendant, len(found))
	for i, a := range found {
		attendants[i] = r.daoToDomain(a)
	}

	return attendants, nil
}

func (r *AttendantRepository) daoToDomain(a dao.Attendant) domain.Attendant {
	return domain.Attendant{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
