package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateSeasonRequest struct {
	Name         string  `json:"name"`
	StartDate    string  `json:"start_date" format:"RFC 3339"`
	EndDate      string  `json:"end_date" format:"RFC 3339"`
	Active       bool    `json:"active"`
	XpMultiplier float64 `json:"xp_multiplier"`
}

func (req *CreateSeasonRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.StartDate, validation.Required),
		validation.Field(&req.EndDate, validation.Required),
		validation.Field(&req.XpMultiplier, validation.Min(0.0)),
	)
}

type CreateEvaluationRequest struct {
	AttendantID uint   `json:"attendant_id"`
	Rating      int    `json:"rating"`
	Date        string `json:"date" format:"RFC 3339, defaults to now"`
}

func (req *CreateEvaluationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.AttendantID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Rating, validation.Required, validation.Min(1), validation.Max(5)),
	)
}

type CreateGrantRequest struct {
	AttendantID   uint   `json:"attendant_id"`
	XpTypeID      uint   `json:"xp_type_id"`
	Justification string `json:"justification"`
}

func (req *CreateGrantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.AttendantID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.XpTypeID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Justification, validation.Length(0, 500)),
	)
}

type CreateXpTypeRequest struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

func (req *CreateXpTypeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Points, validation.Required),
	)
}

type CreateAchievementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	XpReward    int    `json:"xp_reward"`
	CriteriaKey string `json:"criteria_key"`
}

func (req *CreateAchievementRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 500)),
		validation.Field(&req.XpReward, validation.Required, validation.Min(1)),
		validation.Field(&req.CriteriaKey, validation.Required),
	)
}

type CreateAttendantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (req *CreateAttendantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

type ProcessAttendantRequest struct {
	SeasonID       *uint `json:"season_id"`
	ForceReprocess bool  `json:"force_reprocess"`
}

type ProcessSeasonRequest struct {
	AttendantIDs   []uint `json:"attendant_ids"`
	ForceReprocess bool   `json:"force_reprocess"`
}
