package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attenda/attenda-api/internal/config"
	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

var (
	ErrXpTypeNotFound    = repository.ErrXpTypeNotFound
	ErrAttendantNotFound = repository.ErrAttendantNotFound
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrNoActiveSeason    = errors.New("manual grants require an active season")
	ErrGrantOutsideSpan  = errors.New("grant points outside configured range")
)

// IsQuotaExceeded reports whether err is a Grant Guard quota rejection and
// returns its metadata.
func IsQuotaExceeded(err error) (*dao.GrantQuotaError, bool) {
	var quotaErr *dao.GrantQuotaError
	if errors.As(err, &quotaErr) {
		return quotaErr, true
	}
	return nil, false
}

// SeasonRegistry is the slice of SeasonService the ledger needs: which
// season, if any, covers a given instant.
type SeasonRegistry interface {
	ResolveActive(ctx context.Context, at time.Time) (domain.Season, bool, error)
}

// GamificationSettings exposes the hot-reloadable engine tunables.
type GamificationSettings interface {
	GamificationSettings() config.GamificationConfig
}

type XpRepository interface {
	AppendEvent(ctx context.Context, event domain.XpEvent) (domain.XpEvent, error)
	TotalXp(ctx context.Context, attendantID uint, seasonID *uint) (int, error)
	SeasonTotals(ctx context.Context, seasonID uint, limit int) ([]domain.RankingEntry, error)
	AppendManualGrant(ctx context.Context, event domain.XpEvent, limits domain.GrantLimits, dayStart, dayEnd time.Time) (domain.XpEvent, error)
	CreateXpType(ctx context.Context, xpType domain.XpType) (domain.XpType, error)
	FindXpTypeByID(ctx context.Context, id uint) (domain.XpType, error)
	ListXpTypes(ctx context.Context) ([]domain.XpType, error)
}

type EvaluationRepository interface {
	Create(ctx context.Context, evaluation domain.Evaluation) (domain.Evaluation, error)
	RatingsChronological(ctx context.Context, attendantID uint, seasonID *uint) ([]int, error)
}

type AttendantRepository interface {
	Create(ctx context.Context, attendant domain.Attendant) (domain.Attendant, error)
	FindByID(ctx context.Context, id uint) (domain.Attendant, error)
	ListActive(ctx context.Context) ([]domain.Attendant, error)
}

// XpService owns the append-only ledger: every point total in the system
// is a sum over the events it writes. It stamps each event with the season
// active at the event's date, so backdated imports attribute correctly.
type XpService struct {
	repo          XpRepository
	evalRepo      EvaluationRepository
	attendantRepo AttendantRepository
	registry      SeasonRegistry
	settings      GamificationSettings
}

func NewXpService(repo XpRepository, evalRepo EvaluationRepository, attendantRepo AttendantRepository, registry SeasonRegistry, settings GamificationSettings) *XpService {
	return &XpService{
		repo:          repo,
		evalRepo:      evalRepo,
		attendantRepo: attendantRepo,
		registry:      registry,
		settings:      settings,
	}
}

// RecordEvaluation ingests one survey rating: persists the evaluation,
// converts the rating to base points via the configured table and appends
// the EVALUATION ledger event.
func (s *XpService) RecordEvaluation(ctx context.Context, attendantID uint, rating int, date time.Time) (domain.XpEvent, error) {
	settings := s.settings.GamificationSettings()

	basePoints, ok := settings.PointsForRating(rating)
	if !ok {
		return domain.XpEvent{}, ErrInvalidRating
	}

	if _, err := s.attendantRepo.FindByID(ctx, attendantID); err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.attendantRepo.FindByID -> %w", err)
	}

	seasonID, seasonMultiplier, err := s.stampSeason(ctx, date)
	if err != nil {
		return domain.XpEvent{}, err
	}

	evaluation, err := s.evalRepo.Create(ctx, domain.Evaluation{
		AttendantID: attendantID,
		Rating:      rating,
		Date:        date,
		SeasonID:    seasonID,
	})
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.evalRepo.Create -> %w", err)
	}

	event, err := s.repo.AppendEvent(ctx, domain.XpEvent{
		AttendantID: attendantID,
		BasePoints:  basePoints,
		Multiplier:  settings.GlobalMultiplier * seasonMultiplier,
		Points:      domain.EffectivePoints(basePoints, settings.GlobalMultiplier, seasonMultiplier),
		Reason:      fmt.Sprintf("evaluation rated %d", rating),
		Type:        domain.XpEventEvaluation,
		Date:        date,
		SeasonID:    seasonID,
		RelatedID:   &evaluation.ID,
	})
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.repo.AppendEvent -> %w", err)
	}

	return event, nil
}

// GrantXp appends a MANUAL_GRANT event after the Grant Guard checks. The
// per-grant range and active-season checks happen here; the daily quota
// and cooldown checks run atomically with the append inside the
// repository's serializable transaction.
func (s *XpService) GrantXp(ctx context.Context, attendantID, xpTypeID, granterID uint, justification string) (domain.XpEvent, error) {
	settings := s.settings.GamificationSettings()
	now := time.Now().In(settings.Location())

	if _, err := s.attendantRepo.FindByID(ctx, attendantID); err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.attendantRepo.FindByID -> %w", err)
	}

	xpType, err := s.repo.FindXpTypeByID(ctx, xpTypeID)
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.repo.FindXpTypeByID -> %w", err)
	}

	season, found, err := s.registry.ResolveActive(ctx, now)
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.registry.ResolveActive -> %w", err)
	}
	if !found {
		return domain.XpEvent{}, ErrNoActiveSeason
	}

	grant := settings.Grant
	if xpType.Points < grant.MinPointsPerGrant || xpType.Points > grant.MaxPointsPerGrant {
		return domain.XpEvent{}, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrGrantOutsideSpan, xpType.Points, grant.MinPointsPerGrant, grant.MaxPointsPerGrant)
	}

	reason := xpType.Name
	if justification != "" {
		reason = fmt.Sprintf("%s: %s", xpType.Name, justification)
	}

	seasonID := season.ID
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, settings.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	event, err := s.repo.AppendManualGrant(ctx, domain.XpEvent{
		AttendantID: attendantID,
		BasePoints:  xpType.Points,
		Multiplier:  settings.GlobalMultiplier * season.XpMultiplier,
		Points:      domain.EffectivePoints(xpType.Points, settings.GlobalMultiplier, season.XpMultiplier),
		Reason:      reason,
		Type:        domain.XpEventManualGrant,
		Date:        now,
		SeasonID:    &seasonID,
		RelatedID:   &xpType.ID,
		GranterID:   &granterID,
	}, domain.GrantLimits{
		DailyPointsLimit: grant.DailyPointsLimit,
		DailyGrantLimit:  grant.DailyGrantLimit,
		Cooldown:         grant.Cooldown(),
	}, dayStart, dayEnd)
	if err != nil {
		return domain.XpEvent{}, fmt.Errorf("s.repo.AppendManualGrant -> %w", err)
	}

	return event, nil
}

func (s *XpService) TotalXp(ctx context.Context, attendantID uint, seasonID *uint) (int, error) {
	if _, err := s.attendantRepo.FindByID(ctx, attendantID); err != nil {
		return 0, fmt.Errorf("s.attendantRepo.FindByID -> %w", err)
	}

	total, err := s.repo.TotalXp(ctx, attendantID, seasonID)
	if err != nil {
		return 0, fmt.Errorf("s.repo.TotalXp -> %w", err)
	}

	return total, nil
}

func (s *XpService) CreateXpType(ctx context.Context, xpType domain.XpType) (domain.XpType, error) {
	created, err := s.repo.CreateXpType(ctx, xpType)
	if err != nil {
		return domain.XpType{}, fmt.Errorf("s.repo.CreateXpType -> %w", err)
	}

	return created, nil
}

func (s *XpService) ListXpTypes(ctx context.Context) ([]domain.XpType, error) {
	xpTypes, err := s.repo.ListXpTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListXpTypes -> %w", err)
	}

	return xpTypes, nil
}

// stampSeason resolves the season covering date and returns its id and
// multiplier. No season means nil id and the neutral multiplier 1.
func (s *XpService) stampSeason(ctx context.Context, date time.Time) (*uint, float64, error) {
	season, found, err := s.registry.ResolveActive(ctx, date)
	if err != nil {
		return nil, 0, fmt.Errorf("s.registry.ResolveActive -> %w", err)
	}
	if !found {
		return nil, 1, nil
	}

	seasonID := season.ID
	return &seasonID, season.XpMultiplier, nil
}
