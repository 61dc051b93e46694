package v1

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/attenda/attenda-api/internal/domain"
	"github.com/attenda/attenda-api/internal/service"
)

type fakeEvaluationXpSvc struct {
	event domain.XpEvent
	err   error
	date  time.Time
}

func (f *fakeEvaluationXpSvc) RecordEvaluation(_ context.Context, _ uint, _ int, date time.Time) (domain.XpEvent, error) {
	f.date = date
	if f.err != nil {
		return domain.XpEvent{}, f.err
	}
	return f.event, nil
}

type fakeAttendantProcessorSvc struct {
	calls int
	err   error
}

func (f *fakeAttendantProcessorSvc) ProcessAttendant(_ context.Context, _ uint, _ *uint, _ bool) (service.AttendantResult, error) {
	f.calls++
	if f.err != nil {
		return service.AttendantResult{}, f.err
	}
	return service.AttendantResult{}, nil
}

func newEvaluationRouter(xp *fakeEvaluationXpSvc, processor *fakeAttendantProcessorSvc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewEvaluationHandler(xp, processor)

	router := gin.New()
	router.POST("/evaluations", handler.HandleCreateEvaluation)
	return router
}

func TestHandleCreateEvaluation(t *testing.T) {
	body := gin.H{
		"attendant_id": 1,
		"rating":       5,
		"date":         "2026-06-10T12:00:00Z",
	}

	t.Run("records the evaluation and triggers achievement checks", func(t *testing.T) {
		xp := &fakeEvaluationXpSvc{event: domain.XpEvent{ID: 1, Points: 40}}
		processor := &fakeAttendantProcessorSvc{}
		router := newEvaluationRouter(xp, processor)

		resp := performRequest(t, router, http.MethodPost, "/evaluations", body)

		assert.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, 1, processor.calls)
		assert.Equal(t, "2026-06-10T12:00:00Z", xp.date.Format(time.RFC3339))
	})

	t.Run("achievement processing failure does not fail ingestion", func(t *testing.T) {
		xp := &fakeEvaluationXpSvc{event: domain.XpEvent{ID: 1, Points: 40}}
		processor := &fakeAttendantProcessorSvc{err: errors.New("boom")}
		router := newEvaluationRouter(xp, processor)

		resp := performRequest(t, router, http.MethodPost, "/evaluations", body)

		assert.Equal(t, http.StatusCreated, resp.Code)
	})

	t.Run("rating out of range is a 400", func(t *testing.T) {
		router := newEvaluationRouter(&fakeEvaluationXpSvc{}, &fakeAttendantProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/evaluations", gin.H{
			"attendant_id": 1,
			"rating":       6,
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("unknown attendant is a 404", func(t *testing.T) {
		xp := &fakeEvaluationXpSvc{err: service.ErrAttendantNotFound}
		router := newEvaluationRouter(xp, &fakeAttendantProcessorSvc{})

		resp := performRequest(t, router, http.MethodPost, "/evaluations", body)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
