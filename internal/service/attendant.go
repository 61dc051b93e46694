package service

import (
	"context"
	"fmt"

	"github.com/attenda/attenda-api/internal/domain"
)

// AttendantService is thin glue over the attendant records the engine
// evaluates; the HR detail lives elsewhere.
type AttendantService struct {
	repo AttendantRepository
}

func NewAttendantService(repo AttendantRepository) *AttendantService {
	return &AttendantService{
		repo: repo,
	}
}

func (s *AttendantService) CreateAttendant(ctx context.Context, attendant domain.Attendant) (domain.Attendant, error) {
	created, err := s.repo.Create(ctx, attendant)
	if err != nil {
		return domain.Attendant{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AttendantService) GetAttendant(ctx context.Context, id uint) (domain.Attendant, error) {
	attendant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Attendant{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return attendant, nil
}

func (s *AttendantService) ListAttendants(ctx context.Context) ([]domain.Attendant, error) {
	attendants, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListActive -> %w", err)
	}

	return attendants, nil
}
