package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrAttendantNotFound = errors.New("attendant not found")

type Attendant struct {
	ID uint `gorm:"primaryKey"`

	Name   string `gorm:"not null"`
	Email  string `gorm:"not null"`
	Active bool   `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type AttendantDAO struct {
	db *gorm.DB
}

func NewAttendantDAO(db *gorm.DB) *AttendantDAO {
	return &AttendantDAO{
		db: db,
	}
}

func (d *AttendantDAO) Insert(ctx context.Context, attendant Attendant) (Attendant, error) {
	result := d.db.WithContext(ctx).Create(&attendant)
	if result.Error != nil {
		return Attendant{}, result.Error
	}

	return attendant, nil
}

func (d *AttendantDAO) FindByID(ctx context.Context, id uint) (Attendant, error) {
	var attendant Attendant

	result := d.db.WithContext(ctx).First(&attendant, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Attendant{}, ErrAttendantNotFound
		}

		return Attendant{}, result.Error
	}

	return attendant, nil
}

func (d *AttendantDAO) ListActive(ctx context.Context) ([]Attendant, error) {
	var attendants []Attendant

	result := d.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&attendants)
	if result.Error != nil {
		return nil, result.Error
	}

	return attendants, nil
}
