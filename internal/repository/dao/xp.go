package dao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrXpTypeNotFound = errors.New("xp type not found")

// GrantQuotaError reports which Grant Guard limit was hit, with enough
// metadata for the caller to surface retry information.
type GrantQuotaError struct {
	Kind    string // "daily_points", "daily_grants" or "cooldown"
	Limit   int
	Current int
	RetryAt time.Time
}

func (e *GrantQuotaError) Error() string {
	if e.Kind == "cooldown" {
		return fmt.Sprintf("grant quota exceeded: cooldown until %s", e.RetryAt.Format(time.RFC3339))
	}
	return fmt.Sprintf("grant quota exceeded: %s at %d of %d", e.Kind, e.Current, e.Limit)
}

type XpEvent struct {
	ID uint `gorm:"primaryKey"`

	AttendantID uint    `gorm:"not null;index"`
	BasePoints  int     `gorm:"not null"`
	Multiplier  float64 `gorm:"not null"`
	Points      int     `gorm:"not null"`
	Reason      string
	Type        string    `gorm:"not null;index"`
	Date        time.Time `gorm:"not null;index"`
	SeasonID    *uint     `gorm:"index"`
	RelatedID   *uint     `gorm:"index"`
	GranterID   *uint     `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
}

type XpType struct {
	ID uint `gorm:"primaryKey"`

	Name   string `gorm:"not null;unique"`
	Points int    `gorm:"not null"`
	Active bool   `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null"`
}

// RankingRow is one aggregated leaderboard row as read from the ledger.
type RankingRow struct {
	AttendantID uint
	TotalPoints int
	FirstEvent  time.Time
}

type XpEventDAO struct {
	db *gorm.DB
}

func NewXpEventDAO(db *gorm.DB) *XpEventDAO {
	return &XpEventDAO{
		db: db,
	}
}

func (d *XpEventDAO) Insert(ctx context.Context, event XpEvent) (XpEvent, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return XpEvent{}, result.Error
	}

	return event, nil
}

func (d *XpEventDAO) SumPoints(ctx context.Context, attendantID uint, seasonID *uint) (int, error) {
	query := d.db.WithContext(ctx).Model(&XpEvent{}).Where("attendant_id = ?", attendantID)
	if seasonID != nil {
		query = query.Where("season_id = ?", *seasonID)
	}

	var total sql.NullInt64
	if err := query.Select("SUM(points)").Scan(&total).Error; err != nil {
		return 0, err
	}

	return int(total.Int64), nil
}

// SeasonTotals aggregates the season leaderboard: points summed per
// attendant, descending, ties broken by the earliest first event so the
// ordering is deterministic regardless of scan order.
func (d *XpEventDAO) SeasonTotals(ctx context.Context, seasonID uint, limit int) ([]RankingRow, error) {
	var rows []RankingRow

	query := d.db.WithContext(ctx).Model(&XpEvent{}).
		Select("attendant_id, SUM(points) AS total_points, MIN(date) AS first_event").
		Where("season_id = ?", seasonID).
		Group("attendant_id").
		Order("total_points DESC, first_event ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// InsertManualGrant runs the Grant Guard checks and the ledger append in a
// single serializable transaction, so two concurrent grants from the same
// granter cannot both pass the quota check. dayStart/dayEnd bound the
// granter's calendar day in the configured timezone.
func (d *XpEventDAO) InsertManualGrant(ctx context.Context, event XpEvent, limits GrantLimits, dayStart, dayEnd time.Time) (XpEvent, error) {
	var created XpEvent

	// Serialization failures are expected under contention; retry a few
	// times before giving up.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			granted := tx.Model(&XpEvent{}).
				Where("granter_id = ? AND type = ? AND date >= ? AND date < ?",
					*event.GranterID, "MANUAL_GRANT", dayStart, dayEnd)

			var dayPoints sql.NullInt64
			if err := granted.Session(&gorm.Session{}).Select("SUM(points)").Scan(&dayPoints).Error; err != nil {
				return err
			}
			var dayCount int64
			if err := granted.Session(&gorm.Session{}).Count(&dayCount).Error; err != nil {
				return err
			}

			if limits.DailyGrantLimit > 0 && int(dayCount) >= limits.DailyGrantLimit {
				return &GrantQuotaError{Kind: "daily_grants", Limit: limits.DailyGrantLimit, Current: int(dayCount)}
			}
			if limits.DailyPointsLimit > 0 && int(dayPoints.Int64)+event.Points > limits.DailyPointsLimit {
				return &GrantQuotaError{Kind: "daily_points", Limit: limits.DailyPointsLimit, Current: int(dayPoints.Int64)}
			}

			if limits.Cooldown > 0 {
				var last sql.NullTime
				if err := tx.Model(&XpEvent{}).
					Where("attendant_id = ? AND type = ?", event.AttendantID, "MANUAL_GRANT").
					Select("MAX(date)").Scan(&last).Error; err != nil {
					return err
				}
				if last.Valid && event.Date.Sub(last.Time) < limits.Cooldown {
					return &GrantQuotaError{Kind: "cooldown", RetryAt: last.Time.Add(limits.Cooldown)}
				}
			}

			created = event
			return tx.Create(&created).Error
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})

		if err == nil {
			return created, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure {
			continue
		}
		return XpEvent{}, err
	}

	return XpEvent{}, err
}

// GrantLimits mirrors the configured Grant Guard quotas at the DAO
// boundary; zero values disable the corresponding check.
type GrantLimits struct {
	DailyPointsLimit int
	DailyGrantLimit  int
	Cooldown         time.Duration
}

type XpTypeDAO struct {
	db *gorm.DB
}

func NewXpTypeDAO(db *gorm.DB) *XpTypeDAO {
	return &XpTypeDAO{
		db: db,
	}
}

func (d *XpTypeDAO) Insert(ctx context.Context, xpType XpType) (XpType, error) {
	result := d.db.WithContext(ctx).Create(&xpType)
	if result.Error != nil {
		return XpType{}, result.Error
	}

	return xpType, nil
}

func (d *XpTypeDAO) FindByID(ctx context.Context, id uint) (XpType, error) {
	var xpType XpType

	result := d.db.WithContext(ctx).First(&xpType, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return XpType{}, ErrXpTypeNotFound
		}

		return XpType{}, result.Error
	}

	return xpType, nil
}

func (d *XpTypeDAO) ListActive(ctx context.Context) ([]XpType, error) {
	var xpTypes []XpType

	result := d.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&xpTypes)
	if result.Error != nil {
		return nil, result.Error
	}

	return xpTypes, nil
}
