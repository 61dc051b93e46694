package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Evaluation struct {
	ID uint `gorm:"primaryKey"`

	AttendantID uint      `gorm:"not null;index"`
	Rating      int       `gorm:"not null"`
	Date        time.Time `gorm:"not null;index"`
	SeasonID    *uint     `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
}

type EvaluationDAO struct {
	db *gorm.DB
}

func NewEvaluationDAO(db *gorm.DB) *EvaluationDAO {
	return &EvaluationDAO{
		db: db,
	}
}

func (d *EvaluationDAO) Insert(ctx context.Context, evaluation Evaluation) (Evaluation, error) {
	result := d.db.WithContext(ctx).Create(&evaluation)
	if result.Error != nil {
		return Evaluation{}, result.Error
	}

	return evaluation, nil
}

// RatingsChronological returns the attendant's ratings oldest first. The
// streak rule depends on this ordering covering the full history, not a
// tail window.
func (d *EvaluationDAO) RatingsChronological(ctx context.Context, attendantID uint, seasonID *uint) ([]int, error) {
	query := d.db.WithContext(ctx).Model(&Evaluation{}).
		Where("attendant_id = ?", attendantID).
		Order("date ASC, id ASC")
	if seasonID != nil {
		query = query.Where("season_id = ?", *seasonID)
	}

	var ratings []int
	if err := query.Pluck("rating", &ratings).Error; err != nil {
		return nil, err
	}

	return ratings, nil
}
