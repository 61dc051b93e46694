package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

var ErrXpTypeNotFound = dao.ErrXpTypeNotFound

type XpEventDAO interface {
	Insert(ctx context.Context, event dao.XpEvent) (dao.XpEvent, error)
	SumPoints(ctx context.Context, attendantID uint, seasonID *uint) (int, error)
	SeasonTotals(ctx context.Context, seasonID uint, limit int) ([]dao.RankingRow, error)
	InsertManualGrant(ctx context.Context, event dao.XpEvent, limits dao.GrantLimits, dayStart, dayEnd time.Time) (dao.XpEvent, error)
}

type XpTypeDAO interface {
	Insert(ctx context.Context, xpType dao.XpType) (dao.XpType, error)
	FindByID(ctx context.Context, id uint) (dao.XpType, error)
	ListActive(ctx context.Context) ([]dao.XpType, error)
}

type XpRepository struct {
	eventDAO XpEventDAO
	typeDAO  XpTypeDAO
}

func NewXpRepository(eventDAO XpEventDAO, typeDAO XpTypeDAO) *XpRepository {
	return &XpRepository{
		eventDAO: eventDAO,
		typeDAO:  typeDAO,
	}
}

func (r *XpRepository) AppendEvent(ctx context.Context, event domain.XpEvent) (domain.XpEvent, error) {
	created, err := r.eventDAO.Insert(ctx, r.eventDomainToDao(event))
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("r.eventDAO.Insert -> %w", err)
	}

	return r.eventDaoToDomain(created), nil
}

func (r *XpRepository) TotalXp(ctx context.Context, attendantID uint, seasonID *uint) (int, error) {
	total, err := r.eventDAO.SumPoints(ctx, attendantID, seasonID)
	if err != nil {
		return 0, fmt.Errorf("r.eventDAO.SumPoints -> %w", err)
	}

	return total, nil
}

func (r *XpRepository) SeasonTotals(ctx context.Context, seasonID uint, limit int) ([]domain.RankingEntry, error) {
	rows, err := r.eventDAO.SeasonTotals(ctx, seasonID, limit)
	if err != nil {
		return nil, fmt.Errorf("r.eventDAO.SeasonTotals -> %w", err)
	}

	entries := make([]domain.RankingEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.RankingEntry{
			AttendantID: row.AttendantID,
			TotalPoints: row.TotalPoints,
			FirstEvent:  row.FirstEvent,
		}
	}

	return entries, nil
}

func (r *XpRepository) AppendManualGrant(ctx context.Context, event domain.XpEvent, limits domain.GrantLimits, dayStart, dayEnd time.Time) (domain.XpEvent, error) {
	created, err := r.eventDAO.InsertManualGrant(ctx, r.eventDomainToDao(event), dao.GrantLimits{
		DailyPointsLimit: limits.DailyPointsLimit,
		DailyGrantLimit:  limits.DailyGrantLimit,
		Cooldown:         limits.Cooldown,
	}, dayStart, dayEnd)
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("r.eventDAO.InsertManualGrant -> %w", err)
	}

	return r.eventDaoToDomain(created), nil
}

func (r *XpRepository) CreateXpType(ctx context.Context, xpType domain.XpType) (domain.XpType, error) {
	created, err := r.typeDAO.Insert(ctx, dao.XpType{
		Name:   xpType.Name,
		Points: xpType.Points,
		Active: xpType.Active,
	})
	if err != nil {
		return domain.XpType{}, fmt.Errorf("r.typeDAO.Insert -> %w", err)
	}

	return r.typeDaoToDomain(created), nil
}

func (r *XpRepository) FindXpTypeByID(ctx context.Context, id uint) (domain.XpType, error) {
	found, err := r.typeDAO.FindByID(ctx, id)
	if err != nil {
		return domain.XpType{}, fmt.Errorf("r.typeDAO.FindByID -> %w", err)
	}

	return r.typeDaoToDomain(found), nil
}

func (r *XpRepository) ListXpTypes(ctx context.Context) ([]domain.XpType, error) {
	found, err := r.typeDAO.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.typeDAO.ListActive -> %w", err)
	}

	xpTypes := make([]domain.XpType, len(found))
	for i, t := range found {
		xpTypes[i] = r.typeDaoToDomain(t)
	}

	return xpTypes, nil
}

func (r *XpRepository) eventDomainToDao(e domain.XpEvent) dao.XpEvent {
	return dao.XpEvent{
		ID:          e.ID,
		AttendantID: e.AttendantID,
		BasePoints:  e.BasePoints,
		Multiplier:  e.Multiplier,
		Points:      e.Points,
		Reason:      e.Reason,
		Type:        string(e.Type),
		Date:        e.Date,
		SeasonID:    e.SeasonID,
		RelatedID:   e.RelatedID,
		GranterID:   e.GranterID,
		CreatedAt:   e.CreatedAt,
	}
}

func (r *XpRepository) eventDaoToDomain(e dao.XpEvent) domain.XpEvent {
	return domain.XpEvent{
		ID:          e.ID,
		AttendantID: e.AttendantID,
		BasePoints:  e.BasePoints,
		Multiplier:  e.Multiplier,
		Points:      e.Points,
		Reason:      e.Reason,
		Type:        domain.XpEventType(e.Type),
		Date:        e.Date,
		SeasonID:    e.SeasonID,
		RelatedID:   e.RelatedID,
		GranterID:   e.GranterID,
		CreatedAt:   e.CreatedAt,
	}
}

func (r *XpRepository) typeDaoToDomain(t dao.XpType) domain.XpType {
	return domain.XpType{
		ID:        t.ID,
		Name:      t.Name,
		Points:    t.Points,
		Active:    t.Active,
		CreatedAt: t.CreatedAt,
	}
}
