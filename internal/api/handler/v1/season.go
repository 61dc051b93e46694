package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/attenda/attenda-api/internal/api/handler/v1/request"
	"github.com/attenda/attenda-api/internal/api/handler/v1/response"
	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/service"
)

type SeasonRegistryService interface {
	CreateSeason(ctx context.Context, season domain.Season) (domain.Season, error)
	UpdateSeason(ctx context.Context, season domain.Season) (domain.Season, error)
	GetSeason(ctx context.Context, id uint) (domain.Season, error)
	ListSeasons(ctx context.Context) ([]domain.Season, error)
	ResolveActive(ctx context.Context, at time.Time) (domain.Season, bool, error)
	DeleteSeason(ctx context.Context, id uint, force bool) error
}

type LeaderboardService interface {
	Leaderboard(ctx context.Context, seasonID uint, limit int) ([]domain.RankingEntry, error)
}

type SeasonProcessorService interface {
	ProcessSeason(ctx context.Context, seasonID uint, attendantIDs []uint, forceReprocess bool) (service.ProcessReport, error)
}

type SeasonHandler struct {
	svc       SeasonRegistryService
	ranking   LeaderboardService
	processor SeasonProcessorService
}

func NewSeasonHandler(svc SeasonRegistryService, ranking LeaderboardService, processor SeasonProcessorService) *SeasonHandler {
	return &SeasonHandler{
		svc:       svc,
		ranking:   ranking,
		processor: processor,
	}
}

// HandleCreateSeason godoc
// @Summary      Create a season
// @Tags         seasons
// @Produce      json
// @Param        request  body      request.CreateSeasonRequest true "request body"
// @Success      201      {object}  domain.Season
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /seasons [post]
func (h *SeasonHandler) HandleCreateSeason(ctx *gin.Context) {
	season, ok := bindSeason(ctx)
	if !ok {
		return
	}

	created, err := h.svc.CreateSeason(ctx.Request.Context(), season)
	if err != nil {
		renderSeasonErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateSeason godoc
// @Summary      Update a season
// @Tags         seasons
// @Produce      json
// @Param        id       path      int true "season id"
// @Param        request  body      request.CreateSeasonRequest true "request body"
// @Success      200      {object}  domain.Season
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /seasons/{id} [put]
func (h *SeasonHandler) HandleUpdateSeason(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	season, ok := bindSeason(ctx)
	if !ok {
		return
	}
	season.ID = id

	updated, err := h.svc.UpdateSeason(ctx.Request.Context(), season)
	if err != nil {
		renderSeasonErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleGetSeason godoc
// @Summary      Get a season by ID
// @Tags         seasons
// @Produce      json
// @Param        id   path      int true "season id"
// @Success      200  {object}  domain.Season
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /seasons/{id} [get]
func (h *SeasonHandler) HandleGetSeason(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	season, err := h.svc.GetSeason(ctx.Request.Context(), id)
	if err != nil {
		renderSeasonErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, season)
}

// HandleListSeasons godoc
// @Summary      List all seasons
// @Tags         seasons
// @Produce      json
// @Success      200  {array}   domain.Season
// @Failure      500  {object}  response.Err
// @Router       /seasons [get]
func (h *SeasonHandler) HandleListSeasons(ctx *gin.Context) {
	seasons, err := h.svc.ListSeasons(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("HandleListSeasons -> h.svc.ListSeasons -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, seasons)
}

// HandleGetCurrentSeason godoc
// @Summary      Get the season covering the current instant
// @Tags         seasons
// @Produce      json
// @Success      200  {object}  domain.Season
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /seasons/current [get]
func (h *SeasonHandler) HandleGetCurrentSeason(ctx *gin.Context) {
	season, found, err := h.svc.ResolveActive(ctx.Request.Context(), time.Now())
	if err != nil {
		err = fmt.Errorf("HandleGetCurrentSeason -> h.svc.ResolveActive -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}
	if !found {
		response.RenderErr(ctx, response.ErrNotFound("season", "current", time.Now().Format(time.RFC3339)))
		return
	}

	ctx.JSON(http.StatusOK, season)
}

// HandleDeleteSeason godoc
// @Summary      Delete a season
// @Tags         seasons
// @Produce      json
// @Param        id     path   int    true  "season id"
// @Param        force  query  bool   false "also delete the season's events"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /seasons/{id} [delete]
func (h *SeasonHandler) HandleDeleteSeason(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	force := ctx.Query("force") == "true"
	if err := h.svc.DeleteSeason(ctx.Request.Context(), id, force); err != nil {
		renderSeasonErr(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleLeaderboard godoc
// @Summary      Season leaderboard ordered by total points
// @Tags         seasons
// @Produce      json
// @Param        id     path   int true  "season id"
// @Param        limit  query  int false "max entries, defaults to all"
// @Success      200  {object}  response.LeaderboardResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /seasons/{id}/leaderboard [get]
func (h *SeasonHandler) HandleLeaderboard(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("limit must be a non-negative integer")))
			return
		}
		limit = parsed
	}

	entries, err := h.ranking.Leaderboard(ctx.Request.Context(), id, limit)
	if err != nil {
		renderSeasonErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response.NewLeaderboardResponse(id, entries))
}

// HandleProcessSeason godoc
// @Summary      Recompute achievements for a season's attendants
// @Tags         seasons
// @Produce      json
// @Param        id       path      int true "season id"
// @Param        request  body      request.ProcessSeasonRequest true "request body"
// @Success      200      {object}  service.ProcessReport
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /seasons/{id}/process [post]
func (h *SeasonHandler) HandleProcessSeason(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req request.ProcessSeasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	report, err := h.processor.ProcessSeason(ctx.Request.Context(), id, req.AttendantIDs, req.ForceReprocess)
	if err != nil {
		renderSeasonErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

func bindSeason(ctx *gin.Context) (domain.Season, bool) {
	var req request.CreateSeasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Season{}, false
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return domain.Season{}, false
	}

	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("start_date: %w", err)))
		return domain.Season{}, false
	}

	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("end_date: %w", err)))
		return domain.Season{}, false
	}

	return domain.Season{
		Name:         req.Name,
		StartDate:    start,
		EndDate:      end,
		Active:       req.Active,
		XpMultiplier: req.XpMultiplier,
	}, true
}

func renderSeasonErr(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSeasonNotFound):
		response.RenderErr(ctx, response.ErrNotFound("season", "id", ctx.Param("id")))
	case errors.Is(err, service.ErrInvalidSeasonDates):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrSeasonOverlap), errors.Is(err, service.ErrSeasonHasEvents):
		response.RenderErr(ctx, response.ErrConflict(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

// paramID parses a positive integer path parameter.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, raw)))
		return 0, false
	}

	return uint(id), true
}
