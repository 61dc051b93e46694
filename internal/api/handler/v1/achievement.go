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

type AchievementConfigService interface {
	CreateConfig(ctx context.Context, config domain.AchievementConfig) (domain.AchievementConfig, error)
	ListActiveConfigs(ctx context.Context) ([]domain.AchievementConfig, error)
}

type AchievementHandler struct {
	svc AchievementConfigService
}

func NewAchievementHandler(svc AchievementConfigService) *AchievementHandler {
	return &AchievementHandler{
		svc: svc,
	}
}

// HandleCreateAchievement godoc
// @Summary      Create an achievement definition
// @Tags         achievements
// @Produce      json
// @Param        request  body      request.CreateAchievementRequest true "request body"
// @Success      201      {object}  domain.AchievementConfig
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /achievements [post]
func (h *AchievementHandler) HandleCreateAchievement(ctx *gin.Context) {
	var req request.CreateAchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	config, err := h.svc.CreateConfig(ctx.Request.Context(), domain.AchievementConfig{
		Title:       req.Title,
		Description: req.Description,
		XpReward:    req.XpReward,
		CriteriaKey: req.CriteriaKey,
		Active:      true,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnknownCriteria) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleCreateAchievement -> h.svc.CreateConfig -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, config)
}

// HandleListAchievements godoc
// @Summary      List active achievement definitions
// @Tags         achievements
// @Produce      json
// @Success      200  {array}   domain.AchievementConfig
// @Failure      500  {object}  response.Err
// @Router       /achievements [get]
func (h *AchievementHandler) HandleListAchievements(ctx *gin.Context) {
	configs, err := h.svc.ListActiveConfigs(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListAchievements -> h.svc.ListActiveConfigs -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, configs)
}
