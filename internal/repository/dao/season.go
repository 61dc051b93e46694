package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrSeasonNotFound  = errors.New("season not found")
	ErrSeasonHasEvents = errors.New("season has XP events")
)

type Season struct {
	ID uint `gorm:"primaryKey"`

	Name         string    `gorm:"not null"`
	StartDate    time.Time `gorm:"not null;index"`
	EndDate      time.Time `gorm:"not null;index"`
	Active       bool      `gorm:"not null;default:false"`
	XpMultiplier float64   `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type SeasonDAO struct {
	db *gorm.DB
}

func NewSeasonDAO(db *gorm.DB) *SeasonDAO {
	return &SeasonDAO{
		db: db,
	}
}

func (d *SeasonDAO) Insert(ctx context.Context, season Season) (Season, error) {
	result := d.db.WithContext(ctx).Create(&season)
	if result.Error != nil {
		return Season{}, result.Error
	}

	return season, nil
}

func (d *SeasonDAO) Update(ctx context.Context, season Season) (Season, error) {
	result := d.db.WithContext(ctx).Model(&Season{ID: season.ID}).Updates(map[string]any{
		"name":          season.Name,
		"start_date":    season.StartDate,
		"end_date":      season.EndDate,
		"active":        season.Active,
		"xp_multiplier": season.XpMultiplier,
	})
	if result.Error != nil {
		return Season{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Season{}, ErrSeasonNotFound
	}

	return d.FindByID(ctx, season.ID)
}

func (d *SeasonDAO) FindByID(ctx context.Context, id uint) (Season, error) {
	var season Season

	result := d.db.WithContext(ctx).First(&season, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Season{}, ErrSeasonNotFound
		}

		return Season{}, result.Error
	}

	return season, nil
}

func (d *SeasonDAO) List(ctx context.Context) ([]Season, error) {
	var seasons []Season

	result := d.db.WithContext(ctx).Order("start_date").Find(&seasons)
	if result.Error != nil {
		return nil, result.Error
	}

	return seasons, nil
}

// ListActive returns every season flagged active, most recent start first.
// Resolution of "the" current season is the registry's job, not the DAO's.
func (d *SeasonDAO) ListActive(ctx context.Context) ([]Season, error) {
	var seasons []Season

	result := d.db.WithContext(ctx).Where("active = ?", true).Order("start_date DESC").Find(&seasons)
	if result.Error != nil {
		return nil, result.Error
	}

	return seasons, nil
}

func (d *SeasonDAO) ListFinished(ctx context.Context, now time.Time) ([]Season, error) {
	var seasons []Season

	result := d.db.WithContext(ctx).Where("end_date < ?", now).Order("end_date").Find(&seasons)
	if result.Error != nil {
		return nil, result.Error
	}

	return seasons, nil
}

// Delete removes a season. Unless force is set, deletion is rejected while
// XP events reference the season; with force the events are cascaded away
// in the same transaction.
func (d *SeasonDAO) Delete(ctx context.Context, id uint, force bool) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&XpEvent{}).Where("season_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if !force {
				return ErrSeasonHasEvents
			}
			if err := tx.Where("season_id = ?", id).Delete(&XpEvent{}).Error; err != nil {
				return err
			}
			if err := tx.Where("season_id = ?", id).Delete(&Evaluation{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Season{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSeasonNotFound
		}

		return nil
	})
}
