package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attenda/attenda-api/internal/api/handler/v1/request"
	"github.com/attenda/attenda-api/internal/api/handler/v1/response"
	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/service"
)

type GrantXpService interface {
	GrantXp(ctx context.Context, attendantID, xpTypeID, granterID uint, justification string) (domain.XpEvent, error)
	CreateXpType(ctx context.Context, xpType domain.XpType) (domain.XpType, error)
	ListXpTypes(ctx context.Context) ([]domain.XpType, error)
}

type GrantHandler struct {
	xp GrantXpService
}

func NewGrantHandler(xp GrantXpService) *GrantHandler {
	return &GrantHandler{
		xp: xp,
	}
}

// HandleCreateGrant godoc
// @Summary      Manually grant XP to an attendant
// @Tags         grants
// @Produce      json
// @Param        request  body      request.CreateGrantRequest true "request body"
// @Success      201      {object}  domain.XpEvent
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      429      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /grants [post]
func (h *GrantHandler) HandleCreateGrant(ctx *gin.Context) {
	granterID, ok := currentUserID(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(errors.New("missing authenticated user")))
		return
	}

	var req request.CreateGrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.xp.GrantXp(ctx.Request.Context(), req.AttendantID, req.XpTypeID, granterID, req.Justification)
	if err != nil {
		if quotaErr, exceeded := service.IsQuotaExceeded(err); exceeded {
			details := response.QuotaDetails{
				Kind:    quotaErr.Kind,
				Limit:   quotaErr.Limit,
				Current: quotaErr.Current,
			}
			if !quotaErr.RetryAt.IsZero() {
				details.RetryAt = &quotaErr.RetryAt
			}
			response.RenderErr(ctx, response.ErrQuotaExceeded(err, details))
			return
		}

		switch {
		case errors.Is(err, service.ErrAttendantNotFound):
			response.RenderErr(ctx, response.ErrNotFound("attendant", "id", req.AttendantID))
		case errors.Is(err, service.ErrXpTypeNotFound):
			response.RenderErr(ctx, response.ErrNotFound("xp type", "id", req.XpTypeID))
		case errors.Is(err, service.ErrNoActiveSeason):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrGrantOutsideSpan):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleCreateGrant -> h.xp.GrantXp -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleCreateXpType godoc
// @Summary      Create a manual-grant XP type
// @Tags         grants
// @Produce      json
// @Param        request  body      request.CreateXpTypeRequest true "request body"
// @Success      201      {object}  domain.XpType
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /xp-types [post]
func (h *GrantHandler) HandleCreateXpType(ctx *gin.Context) {
	var req request.CreateXpTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	xpType, err := h.xp.CreateXpType(ctx.Request.Context(), domain.XpType{
		Name:   req.Name,
		Points: req.Points,
		Active: true,
	})
	if err != nil {
		err = fmt.Errorf("HandleCreateXpType -> h.xp.CreateXpType -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, xpType)
}

// HandleListXpTypes godoc
// @Summary      List manual-grant XP types
// @Tags         grants
// @Produce      json
// @Success      200  {array}   domain.XpType
// @Failure      500  {object}  response.Err
// @Router       /xp-types [get]
func (h *GrantHandler) HandleListXpTypes(ctx *gin.Context) {
	xpTypes, err := h.xp.ListXpTypes(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListXpTypes -> h.xp.ListXpTypes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, xpTypes)
}
