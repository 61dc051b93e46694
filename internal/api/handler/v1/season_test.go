package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/service"
)

type fakeSeasonSvc struct {
	created   domain.Season
	createErr error
	season    domain.Season
	getErr    error
}

func (f *fakeSeasonSvc) CreateSeason(_ context.Context, season domain.Season) (domain.Season, error) {
	if f.createErr != nil {
		return domain.Season{}, f.createErr
	}
	f.created = season
	season.ID = 1
	return season, nil
}

func (f *fakeSeasonSvc) UpdateSeason(_ context.Context, season domain.Season) (domain.Season, error) {
	return season, nil
}

func (f *fakeSeasonSvc) GetSeason(_ context.Context, _ uint) (domain.Season, error) {
	if f.getErr != nil {
		return domain.Season{}, f.getErr
	}
	return f.season, nil
}

func (f *fakeSeasonSvc) ListSeasons(_ context.Context) ([]domain.Season, error) {
	return []domain.Season{f.season}, nil
}

func (f *fakeSeasonSvc) ResolveActive(_ context.Context, _ time.Time) (domain.Season, bool, error) {
	return f.season, f.season.ID != 0, nil
}

func (f *fakeSeasonSvc) DeleteSeason(_ context.Context, _ uint, _ bool) error {
	return nil
}

type fakeRankingSvc struct {
	entries []domain.RankingEntry
	err     error
}

func (f *fakeRankingSvc) Leaderboard(_ context.Context, _ uint, limit int) ([]domain.RankingEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

type fakeSeasonProcessorSvc struct {
	report service.ProcessReport
}

func (f *fakeSeasonProcessorSvc) ProcessSeason(_ context.Context, _ uint, _ []uint, _ bool) (service.ProcessReport, error) {
	return f.report, nil
}

func newSeasonRouter(svc *fakeSeasonSvc, ranking *fakeRankingSvc, processor *fakeSeasonProcessorSvc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSeasonHandler(svc, ranking, processor)

	router := gin.New()
	router.POST("/seasons", handler.HandleCreateSeason)
	router.GET("/seasons/:id", handler.HandleGetSeason)
	router.GET("/seasons/:id/leaderboard", handler.HandleLeaderboard)
	router.POST("/seasons/:id/process", handler.HandleProcessSeason)
	return router
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandleCreateSeason(t *testing.T) {
	t.Run("creates and returns the season", func(t *testing.T) {
		svc := &fakeSeasonSvc{}
		router := newSeasonRouter(svc, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/seasons", gin.H{
			"name":          "June",
			"start_date":    "2026-06-01T00:00:00Z",
			"end_date":      "2026-06-30T23:59:59Z",
			"active":        true,
			"xp_multiplier": 2.0,
		})

		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, "June", svc.created.Name)
		assert.Equal(t, 2.0, svc.created.XpMultiplier)
		assert.True(t, svc.created.Active)
	})

	t.Run("missing name is a 400", func(t *testing.T) {
		router := newSeasonRouter(&fakeSeasonSvc{}, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/seasons", gin.H{
			"start_date": "2026-06-01T00:00:00Z",
			"end_date":   "2026-06-30T23:59:59Z",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("malformed date is a 400", func(t *testing.T) {
		router := newSeasonRouter(&fakeSeasonSvc{}, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/seasons", gin.H{
			"name":       "June",
			"start_date": "June 1st",
			"end_date":   "2026-06-30T23:59:59Z",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("overlap maps to 409", func(t *testing.T) {
		svc := &fakeSeasonSvc{createErr: fmt.Errorf("%w: season 1 (June)", service.ErrSeasonOverlap)}
		router := newSeasonRouter(svc, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/seasons", gin.H{
			"name":       "Mid-June",
			"start_date": "2026-06-15T00:00:00Z",
			"end_date":   "2026-07-15T23:59:59Z",
			"active":     true,
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("inverted dates map to 400", func(t *testing.T) {
		svc := &fakeSeasonSvc{createErr: service.ErrInvalidSeasonDates}
		router := newSeasonRouter(svc, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/seasons", gin.H{
			"name":       "Backwards",
			"start_date": "2026-06-30T00:00:00Z",
			"end_date":   "2026-06-01T00:00:00Z",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestHandleGetSeason(t *testing.T) {
	t.Run("unknown season is a 404", func(t *testing.T) {
		svc := &fakeSeasonSvc{getErr: service.ErrSeasonNotFound}
		router := newSeasonRouter(svc, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodGet, "/seasons/99", nil)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		router := newSeasonRouter(&fakeSeasonSvc{}, &fakeRankingSvc{}, &fakeSeasonProcessorSvc{})

		resp := performRequest(t, router, http.MethodGet, "/seasons/june", nil)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestHandleLeaderboard(t *testing.T) {
	ranking := &fakeRankingSvc{entries: []domain.RankingEntry{
		{AttendantID: 2, TotalPoints: 100},
		{AttendantID: 1, TotalPoints: 50},
		{AttendantID: 3, TotalPoints: 40},
		{AttendantID: 4, TotalPoints: 10},
	}}
	router := newSeasonRouter(&fakeSeasonSvc{}, ranking, &fakeSeasonProcessorSvc{})

	resp := performRequest(t, router, http.MethodGet, "/seasons/3/leaderboard", nil)

	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		SeasonID uint `json:"season_id"`
		Entries  []struct {
			Position    int    `json:"position"`
			AttendantID uint   `json:"attendant_id"`
			TotalPoints int    `json:"total_points"`
			Medal       string `json:"medal"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.Equal(t, uint(3), body.SeasonID)
	require.Len(t, body.Entries, 4)
	assert.Equal(t, 1, body.Entries[0].Position)
	assert.Equal(t, "gold", body.Entries[0].Medal)
	assert.Equal(t, "silver", body.Entries[1].Medal)
	assert.Equal(t, "bronze", body.Entries[2].Medal)
	assert.Empty(t, body.Entries[3].Medal)
}
