package repository

import (
	"context"
	"fmt"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/repository/dao"
)

var (
	ErrAchievementNotFound        = dao.ErrAchievementNotFound
	ErrAchievementAlreadyUnlocked = dao.ErrAchievementAlreadyUnlocked
	ErrUnlockNotFound             = dao.ErrUnlockNotFound
)

type AchievementDAO interface {
	InsertConfig(ctx context.Context, config dao.AchievementConfig) (dao.AchievementConfig, error)
	FindConfigByID(ctx context.Context, id uint) (dao.AchievementConfig, error)
	ListActiveConfigs(ctx context.Context) ([]dao.AchievementConfig, error)
	ListUnlocksByAttendant(ctx context.Context, attendantID uint) ([]dao.UnlockedAchievement, error)
	HasUnlock(ctx context.Context, attendantID, achievementID, seasonID uint) (bool, error)
	InsertUnlockWithEvent(ctx context.Context, unlock dao.UnlockedAchievement, event dao.XpEvent) (dao.UnlockedAchievement, error)
	DeleteUnlockWithEvent(ctx context.Context, attendantID, achievementID, seasonID uint) error
}

type AchievementRepository struct {
	dao AchievementDAO
}

func NewAchievementRepository(dao AchievementDAO) *AchievementRepository {
	return &AchievementRepository{
		dao: dao,
	}
}

func (r *AchievementRepository) CreateConfig(ctx context.Context, config domain.AchievementConfig) (domain.AchievementConfig, error) {
	created, err := r.dao.InsertConfig(ctx, dao.AchievementConfig{
		Title:       config.Title,
		Description: config.Description,
		XpReward:    config.XpReward,
		Active:      config.Active,
		CriteriaKey: config.CriteriaKey,
	})
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("r.dao.InsertConfig -> %w", err)
	}

	return r.configDaoToDomain(created), nil
}

func (r *AchievementRepository) FindConfigByID(ctx context.Context, id uint) (domain.AchievementConfig, error) {
	found, err := r.dao.FindConfigByID(ctx, id)
	if err != nil {
		return domain.AchievementConfig{}, fmt.Errorf("r.dao.FindConfigByID -> %w", err)
	}

	return r.configDaoToDomain(found), nil
}

func (r *AchievementRepository) ListActiveConfigs(ctx context.Context) ([]domain.AchievementConfig, error) {
	found, err := r.dao.ListActiveConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListActiveConfigs -> %w", err)
	}

	configs := make([]domain.AchievementConfig, len(found))
	for i, c := range found {
		configs[i] = r.configDaoToDomain(c)
	}

	return configs, nil
}

func (r *AchievementRepository) ListUnlocksByAttendant(ctx context.Context, attendantID uint) ([]domain.UnlockedAchievement, error) {
	found, err := r.dao.ListUnlocksByAttendant(ctx, attendantID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListUnlocksByAttendant -> %w", err)
	}

	unlocks := make([]domain.UnlockedAchievement, len(found))
	for i, u := range found {
		unlocks[i] = r.unlockDaoToDomain(u)
	}

	return unlocks, nil
}

func (r *AchievementRepository) HasUnlock(ctx context.Context, attendantID, achievementID uint, seasonID *uint) (bool, error) {
	has, err := r.dao.HasUnlock(ctx, attendantID, achievementID, scopeSeasonID(seasonID))
	if err != nil {
		return false, fmt.Errorf("r.dao.HasUnlock -> %w", err)
	}

	return has, nil
}

func (r *AchievementRepository) CreateUnlockWithEvent(ctx context.Context, unlock domain.UnlockedAchievement, event domain.XpEvent) (domain.UnlockedAchievement, error) {
	created, err := r.dao.InsertUnlockWithEvent(ctx, dao.UnlockedAchievement{
		AttendantID:   unlock.AttendantID,
		AchievementID: unlock.AchievementID,
		SeasonID:      scopeSeasonID(unlock.SeasonID),
		UnlockedAt:    unlock.UnlockedAt,
		XpGained:      unlock.XpGained,
	}, dao.XpEvent{
		AttendantID: event.AttendantID,
		BasePoints:  event.BasePoints,
		Multiplier:  event.Multiplier,
		Points:      event.Points,
		Reason:      event.Reason,
		Type:        string(event.Type),
		Date:        event.Date,
		SeasonID:    event.SeasonID,
		GranterID:   event.GranterID,
	})
	if err != nil {
		return domain.UnlockedAchievement{}, fmt.Errorf("r.dao.InsertUnlockWithEvent -> %w", err)
	}

	return r.unlockDaoToDomain(created), nil
}

func (r *AchievementRepository) DeleteUnlockWithEvent(ctx context.Context, attendantID, achievementID uint, seasonID *uint) error {
	if err := r.dao.DeleteUnlockWithEvent(ctx, attendantID, achievementID, scopeSeasonID(seasonID)); err != nil {
		return fmt.Errorf("r.dao.DeleteUnlockWithEvent -> %w", err)
	}

	return nil
}

func (r *AchievementRepository) configDaoToDomain(c dao.AchievementConfig) domain.AchievementConfig {
	return domain.AchievementConfig{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		XpReward:    c.XpReward,
		Active:      c.Active,
		CriteriaKey: c.CriteriaKey,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (r *AchievementRepository) unlockDaoToDomain(u dao.UnlockedAchievement) domain.UnlockedAchievement {
	var seasonID *uint
	if u.SeasonID != 0 {
		id := u.SeasonID
		seasonID = &id
	}

	return domain.UnlockedAchievement{
		ID:            u.ID,
		AttendantID:   u.AttendantID,
		AchievementID: u.AchievementID,
		SeasonID:      seasonID,
		UnlockedAt:    u.UnlockedAt,
		XpGained:      u.XpGained,
	}
}

// scopeSeasonID maps the domain's nil-for-lifetime season pointer onto the
// zero sentinel the unlock uniqueness index expects.
func scopeSeasonID(seasonID *uint) uint {
	if seasonID == nil {
		return 0
	}
	return *seasonID
}
