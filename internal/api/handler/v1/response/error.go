package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Err struct {
	StatusCode int `json:"-"`

	Msg   string `json:"error"`
	Extra any    `json:"details,omitempty"`
}

func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.String("error", err.Msg))
		// Internal details stay in the logs.
		err.Msg = "internal server error"
	}

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Msg:        err.Error(),
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Msg:        fmt.Sprintf("%s not found by %s (%v)", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Msg:        err.Error(),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Msg:        err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        err.Error(),
	}
}

// QuotaDetails carries the Grant Guard limit metadata so callers can back
// off instead of guessing.
type QuotaDetails struct {
	Kind    string     `json:"kind"`
	Limit   int        `json:"limit,omitempty"`
	Current int        `json:"current,omitempty"`
	RetryAt *time.Time `json:"retry_at,omitempty"`
}

func ErrQuotaExceeded(err error, details QuotaDetails) *Err {
	return &Err{
		StatusCode: http.StatusTooManyRequests,
		Msg:        err.Error(),
		Extra:      details,
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Msg:        err.Error(),
	}
}
