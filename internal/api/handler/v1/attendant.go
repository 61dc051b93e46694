package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attenda/attenda-api/internal/api/handler/v1/request"
	"github.com/attenda/attenda-api/internal/api/handler/v1/response"
	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/service"
)

type AttendantFinderService interface {
	CreateAttendant(ctx context.Context, attendant domain.Attendant) (domain.Attendant, error)
	GetAttendant(ctx context.Context, id uint) (domain.Attendant, error)
	ListAttendants(ctx context.Context) ([]domain.Attendant, error)
}

type AttendantXpService interface {
	TotalXp(ctx context.Context, attendantID uint, seasonID *uint) (int, error)
}

type AttendantAchievementService interface {
	AchievementStatuses(ctx context.Context, attendantID uint) ([]domain.AchievementStatus, error)
}

type AttendantProcessorService interface {
	ProcessAttendant(ctx context.Context, attendantID uint, seasonID *uint, forceReprocess bool) (service.AttendantResult, error)
}

type AttendantHandler struct {
	svc          AttendantFinderService
	xp           AttendantXpService
	achievements AttendantAchievementService
	processor    AttendantProcessorService
}

func NewAttendantHandler(
	svc AttendantFinderService,
	xp AttendantXpService,
	achievements AttendantAchievementService,
	processor AttendantProcessorService,
) *AttendantHandler {
	return &AttendantHandler{
		svc:          svc,
		xp:           xp,
		achievements: achievements,
		processor:    processor,
	}
}

// HandleCreateAttendant godoc
// @Summary      Create an attendant
// @Tags         attendants
// @Produce      json
// @Param        request  body      request.CreateAttendantRequest true "request body"
// @Success      201      {object}  domain.Attendant
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /attendants [post]
func (h *AttendantHandler) HandleCreateAttendant(ctx *gin.Context) {
	var req request.CreateAttendantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	attendant, err := h.svc.CreateAttendant(ctx.Request.Context(), domain.Attendant{
		Name:   req.Name,
		Email:  req.Email,
		Active: true,
	})
	if err != nil {
		err = fmt.Errorf("HandleCreateAttendant -> h.svc.CreateAttendant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, attendant)
}

// HandleGetAttendant godoc
// @Summary      Get an attendant by ID
// @Tags         attendants
// @Produce      json
// @Param        id   path      int true "attendant id"
// @Success      200  {object}  domain.Attendant
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /attendants/{id} [get]
func (h *AttendantHandler) HandleGetAttendant(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	attendant, err := h.svc.GetAttendant(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAttendantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("attendant", "id", ctx.Param("id")))
			return
		}

		err = fmt.Errorf("HandleGetAttendant -> h.svc.GetAttendant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, attendant)
}

// HandleListAttendants godoc
// @Summary      List attendants
// @Tags         attendants
// @Produce      json
// @Success      200  {array}   domain.Attendant
// @Failure      500  {object}  response.Err
// @Router       /attendants [get]
func (h *AttendantHandler) HandleListAttendants(ctx *gin.Context) {
	attendants, err := h.svc.ListAttendants(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListAttendants -> h.svc.ListAttendants -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, attendants)
}

// HandleGetTotalXp godoc
// @Summary      Total XP for an attendant, lifetime or per season
// @Tags         attendants
// @Produce      json
// @Param        id         path   int true  "attendant id"
// @Param        season_id  query  int false "restrict the sum to one season"
// @Success      200  {object}  response.TotalXpResponse
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /attendants/{id}/xp [get]
func (h *AttendantHandler) HandleGetTotalXp(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	seasonID, ok := querySeasonID(ctx)
	if !ok {
		return
	}

	total, err := h.xp.TotalXp(ctx.Request.Context(), id, seasonID)
	if err != nil {
		if errors.Is(err, service.ErrAttendantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("attendant", "id", ctx.Param("id")))
			return
		}

		err = fmt.Errorf("HandleGetTotalXp -> h.xp.TotalXp -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.TotalXpResponse{
		AttendantID: id,
		SeasonID:    seasonID,
		TotalXp:     total,
	})
}

// HandleGetAchievements godoc
// @Summary      Achievement statuses for an attendant
// @Tags         attendants
// @Produce      json
// @Param        id   path      int true "attendant id"
// @Success      200  {array}   domain.AchievementStatus
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /attendants/{id}/achievements [get]
func (h *AttendantHandler) HandleGetAchievements(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	statuses, err := h.achievements.AchievementStatuses(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAttendantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("attendant", "id", ctx.Param("id")))
			return
		}

		err = fmt.Errorf("HandleGetAchievements -> h.achievements.AchievementStatuses -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, statuses)
}

// HandleProcessAttendant godoc
// @Summary      Recompute one attendant's achievements from the ledger
// @Tags         attendants
// @Produce      json
// @Param        id       path      int true "attendant id"
// @Param        request  body      request.ProcessAttendantRequest true "request body"
// @Success      200      {object}  service.AttendantResult
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /attendants/{id}/process [post]
func (h *AttendantHandler) HandleProcessAttendant(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req request.ProcessAttendantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.processor.ProcessAttendant(ctx.Request.Context(), id, req.SeasonID, req.ForceReprocess)
	if err != nil {
		if errors.Is(err, service.ErrAttendantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("attendant", "id", ctx.Param("id")))
			return
		}

		err = fmt.Errorf("HandleProcessAttendant -> h.processor.ProcessAttendant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func querySeasonID(ctx *gin.Context) (*uint, bool) {
	raw := ctx.Query("season_id")
	if raw == "" {
		return nil, true
	}

	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid season_id %q", raw)))
		return nil, false
	}

	seasonID := uint(parsed)
	return &seasonID, true
}
