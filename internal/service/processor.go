package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/attenda/attenda-api/internal/domain"
)

// AttendantResult is the per-attendant outcome of one processing pass.
type AttendantResult struct {
	AttendantID     uint   `json:"attendant_id"`
	Unlocked        []uint `json:"unlocked"`
	AlreadyUnlocked int    `json:"already_unlocked"`
	NotEligible     int    `json:"not_eligible"`
}

// AttendantError is one attendant's failure inside a batch. Failures are
// collected, never raised, so one bad attendant cannot abort the batch.
type AttendantError struct {
	AttendantID uint   `json:"attendant_id"`
	Error       string `json:"error"`
}

// ProcessReport is the aggregate outcome of a batch run: partial success
// with an itemized error list rather than a single fatal abort.
type ProcessReport struct {
	Results []AttendantResult `json:"results"`
	Errors  []AttendantError  `json:"errors"`
}

// Coordinator is the slice of AchievementService the processor drives.
type Coordinator interface {
	ListActiveConfigs(ctx context.Context) ([]domain.AchievementConfig, error)
	TryUnlock(ctx context.Context, attendantID uint, achievement domain.AchievementConfig, seasonID *uint) (domain.UnlockOutcome, error)
	ResetUnlock(ctx context.Context, attendantID, achievementID uint, seasonID *uint) error
}

// ProcessorService re-evaluates attendants against every active
// achievement. It is idempotent by construction: all unlock attempts
// funnel through the coordinator's uniqueness guarantee, so re-running it
// (or racing it against live traffic) produces no duplicates.
type ProcessorService struct {
	coordinator   Coordinator
	attendantRepo AttendantRepository
}

func NewProcessorService(coordinator Coordinator, attendantRepo AttendantRepository) *ProcessorService {
	return &ProcessorService{
		coordinator:   coordinator,
		attendantRepo: attendantRepo,
	}
}

// ProcessAttendant runs every active achievement for one attendant in the
// given scope. With forceReprocess the existing unlock (and its paired
// reward event) is removed first so the reward is recomputed against the
// current configuration.
func (s *ProcessorService) ProcessAttendant(ctx context.Context, attendantID uint, seasonID *uint, forceReprocess bool) (AttendantResult, error) {
	if _, err := s.attendantRepo.FindByID(ctx, attendantID); err != nil {
		return AttendantResult{}, fmt.Errorf("s.attendantRepo.FindByID -> %w", err)
	}

	configs, err := s.coordinator.ListActiveConfigs(ctx)
	if err != nil {
		return AttendantResult{}, fmt.Errorf("s.coordinator.ListActiveConfigs -> %w", err)
	}

	result := AttendantResult{AttendantID: attendantID}
	for _, achievement := range configs {
		if forceReprocess {
			if err := s.coordinator.ResetUnlock(ctx, attendantID, achievement.ID, seasonID); err != nil {
				return AttendantResult{}, fmt.Errorf("s.coordinator.ResetUnlock -> %w", err)
			}
		}

		outcome, err := s.coordinator.TryUnlock(ctx, attendantID, achievement, seasonID)
		if err != nil {
			return AttendantResult{}, fmt.Errorf("s.coordinator.TryUnlock -> %w", err)
		}

		switch outcome {
		case domain.OutcomeUnlocked:
			result.Unlocked = append(result.Unlocked, achievement.ID)
		case domain.OutcomeAlreadyUnlocked:
			result.AlreadyUnlocked++
		default:
			result.NotEligible++
		}
	}

	return result, nil
}

// ProcessSeason runs the season-scoped pass over the given attendants, or
// over every active attendant when none are named. Attendants are
// processed independently; a failure is recorded and the batch moves on.
func (s *ProcessorService) ProcessSeason(ctx context.Context, seasonID uint, attendantIDs []uint, forceReprocess bool) (ProcessReport, error) {
	if len(attendantIDs) == 0 {
		attendants, err := s.attendantRepo.ListActive(ctx)
		if err != nil {
			return ProcessReport{}, fmt.Errorf("s.attendantRepo.ListActive -> %w", err)
		}
		for _, a := range attendants {
			attendantIDs = append(attendantIDs, a.ID)
		}
	}

	report := ProcessReport{}
	for _, attendantID := range attendantIDs {
		result, err := s.ProcessAttendant(ctx, attendantID, &seasonID, forceReprocess)
		if err != nil {
			zap.L().Warn("season processing failed for attendant",
				zap.Uint("season_id", seasonID),
				zap.Uint("attendant_id", attendantID),
				zap.Error(err))
			report.Errors = append(report.Errors, AttendantError{
				AttendantID: attendantID,
				Error:       err.Error(),
			})
			continue
		}

		report.Results = append(report.Results, result)
	}

	return report, nil
}
