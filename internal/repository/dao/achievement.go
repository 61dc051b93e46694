package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAchievementNotFound        = errors.New("achievement not found")
	ErrAchievementAlreadyUnlocked = errors.New("achievement already unlocked")
	ErrUnlockNotFound             = errors.New("unlocked achievement not found")
)

type AchievementConfig struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string
	XpReward    int    `gorm:"not null"`
	Active      bool   `gorm:"not null;default:true"`
	CriteriaKey string `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// UnlockedAchievement stores season_id 0 for lifetime scope so the
// composite unique index always collides; Postgres treats NULLs as
// distinct, which would break the at-most-once guarantee.
type UnlockedAchievement struct {
	ID uint `gorm:"primaryKey"`

	AttendantID   uint `gorm:"not null;uniqueIndex:idx_unlock_scope"`
	AchievementID uint `gorm:"not null;uniqueIndex:idx_unlock_scope"`
	SeasonID      uint `gorm:"not null;default:0;uniqueIndex:idx_unlock_scope"`

	UnlockedAt time.Time `gorm:"not null"`
	XpGained   int       `gorm:"not null"`
}

type AchievementDAO struct {
	db *gorm.DB
}

func NewAchievementDAO(db *gorm.DB) *AchievementDAO {
	return &AchievementDAO{
		db: db,
	}
}

func (d *AchievementDAO) InsertConfig(ctx context.Context, config AchievementConfig) (AchievementConfig, error) {
	result := d.db.WithContext(ctx).Create(&config)
	if result.Error != nil {
		return AchievementConfig{}, result.Error
	}

	return config, nil
}

func (d *AchievementDAO) FindConfigByID(ctx context.Context, id uint) (AchievementConfig, error) {
	var config AchievementConfig

	result := d.db.WithContext(ctx).First(&config, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return AchievementConfig{}, ErrAchievementNotFound
		}

		return AchievementConfig{}, result.Error
	}

	return config, nil
}

func (d *AchievementDAO) ListActiveConfigs(ctx context.Context) ([]AchievementConfig, error) {
	var configs []AchievementConfig

	result := d.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&configs)
	if result.Error != nil {
		return nil, result.Error
	}

	return configs, nil
}

func (d *AchievementDAO) ListUnlocksByAttendant(ctx context.Context, attendantID uint) ([]UnlockedAchievement, error) {
	var unlocks []UnlockedAchievement

	result := d.db.WithContext(ctx).Where("attendant_id = ?", attendantID).Order("unlocked_at").Find(&unlocks)
	if result.Error != nil {
		return nil, result.Error
	}

	return unlocks, nil
}

func (d *AchievementDAO) HasUnlock(ctx context.Context, attendantID, achievementID, seasonID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&UnlockedAchievement{}).
		Where("attendant_id = ? AND achievement_id = ? AND season_id = ?", attendantID, achievementID, seasonID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// InsertUnlockWithEvent inserts the unlock row and its paired ACHIEVEMENT
// ledger event in one transaction. A unique-constraint hit means a
// concurrent attempt already recorded this scope; callers treat that as
// AlreadyUnlocked, not as failure.
func (d *AchievementDAO) InsertUnlockWithEvent(ctx context.Context, unlock UnlockedAchievement, event XpEvent) (UnlockedAchievement, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&unlock).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) &&
				pgErr.Code == pgerrcode.UniqueViolation &&
				strings.Contains(pgErr.Message, `unique constraint "idx_unlock_scope"`) {
				return ErrAchievementAlreadyUnlocked
			}

			return err
		}

		event.RelatedID = &unlock.ID
		return tx.Create(&event).Error
	})
	if err != nil {
		return UnlockedAchievement{}, err
	}

	return unlock, nil
}

// DeleteUnlockWithEvent removes an unlock and the ACHIEVEMENT ledger event
// it produced, transactionally. Force reprocessing relies on both going
// away together; removing only the unlock would leave a stale event and
// double-count the reward on re-insert.
func (d *AchievementDAO) DeleteUnlockWithEvent(ctx context.Context, attendantID, achievementID, seasonID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unlock UnlockedAchievement
		err := tx.Where("attendant_id = ? AND achievement_id = ? AND season_id = ?",
			attendantID, achievementID, seasonID).First(&unlock).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnlockNotFound
			}
			return err
		}

		if err := tx.Where("type = ? AND related_id = ? AND attendant_id = ?",
			"ACHIEVEMENT", unlock.ID, attendantID).Delete(&XpEvent{}).Error; err != nil {
			return err
		}

		return tx.Delete(&UnlockedAchievement{}, unlock.ID).Error
	})
}
