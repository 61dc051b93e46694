package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/attenda/attenda-api/internal/api/handler/v1/request"
	"github.com/attenda/attenda-api/internal/api/handler/v1/response"
	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/service"
)

type EvaluationXpService interface {
	RecordEvaluation(ctx context.Context, attendantID uint, rating int, date time.Time) (domain.XpEvent, error)
}

type EvaluationHandler struct {
	xp        EvaluationXpService
	processor AttendantProcessorService
}

func NewEvaluationHandler(xp EvaluationXpService, processor AttendantProcessorService) *EvaluationHandler {
	return &EvaluationHandler{
		xp:        xp,
		processor: processor,
	}
}

// HandleCreateEvaluation godoc
// @Summary      Record a customer evaluation and award XP
// @Tags         evaluations
// @Produce      json
// @Param        request  body      request.CreateEvaluationRequest true "request body"
// @Success      201      {object}  domain.XpEvent
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /evaluations [post]
func (h *EvaluationHandler) HandleCreateEvaluation(ctx *gin.Context) {
	var req request.CreateEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("date: %w", err)))
			return
		}
		date = parsed
	}

	event, err := h.xp.RecordEvaluation(ctx.Request.Context(), req.AttendantID, req.Rating, date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttendantNotFound):
			response.RenderErr(ctx, response.ErrNotFound("attendant", "id", req.AttendantID))
		case errors.Is(err, service.ErrInvalidRating):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("HandleCreateEvaluation -> h.xp.RecordEvaluation -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	// Achievement checks ride along with ingestion but never fail it;
	// the retroactive processor can always catch up later.
	if _, err := h.processor.ProcessAttendant(ctx.Request.Context(), req.AttendantID, nil, false); err != nil {
		zap.L().Warn("achievement processing after evaluation failed",
			zap.Uint("attendant_id", req.AttendantID),
			zap.Error(err),
		)
	}

	ctx.JSON(http.StatusCreated, event)
}
