// Package httphelper provides shared binding, parameter and error rendering
// helpers for the gin handlers.
package httphelper

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func BindJSON[T any](ctx *gin.Context) (T, bool) { //nolint:ireturn
	var value T
	if err := ctx.ShouldBindJSON(&value); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			SetError(ctx, NewAPIError(http.StatusBadRequest, validationErrs))
		} else {
			SetError(ctx, NewAPIError(http.StatusBadRequest, ErrBadRequest))
		}

		return value, false
	}

	return value, true
}

func GetStringParam(ctx *gin.Context, key string) (string, bool) {
	value := ctx.Param(key)
	if value == "" {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, ErrParamKeyMissing,
			"Cannot read value for param: %s", key))

		return "", false
	}

	return value, true
}

func GetIntQuery(ctx *gin.Context, key string, fallback int) (int, bool) {
	valueStr := ctx.Query(key)
	if valueStr == "" {
		return fallback, true
	}

	value, valueErr := strconv.Atoi(valueStr)
	if valueErr != nil {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, errors.Join(valueErr, ErrParamParse),
			"Must be a valid integer: %s", key))

		return 0, false
	}

	if value < 0 {
		SetError(ctx, NewAPIErrorf(http.StatusBadRequest, ErrParamInvalid,
			"Integer value cannot be negative: %s", key))

		return 0, false
	}

	return value, true
}

func NewServer(listenAddr string, handler http.Handler) *http.Server {
	httpServer := &http.Server{
		Addr:           listenAddr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return httpServer
}
