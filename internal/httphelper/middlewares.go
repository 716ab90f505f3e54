package httphelper

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		slog.Error("Recovery error:", slog.String("err", fmt.Sprintf("%v", err)))

		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Something went wrong",
		})
	})
}

func ErrorHandler() gin.HandlerFunc {
	// To conform to rfc9457, we need to set the content-type. Calling ctx.JSON() would use the default application/json
	// content type.
	abort := func(ctx *gin.Context, apiError APIError) {
		ctx.Header("Content-Type", "application/problem+json")
		ctx.Status(apiError.Status)

		err := json.NewEncoder(ctx.Writer).Encode(apiError)
		if err != nil {
			ctx.Abort()

			return
		}
	}

	return func(ctx *gin.Context) {
		ctx.Next()

		if err := ctx.Errors.Last(); err != nil {
			ctx.Abort()

			var apiError APIError
			if errors.As(err, &apiError) {
				abort(ctx, apiError)
				if apiError.Status >= http.StatusInternalServerError {
					sentry.CaptureException(apiError)
				}
			} else {
				abort(ctx, NewAPIError(http.StatusInternalServerError, ErrInternal))
				sentry.CaptureException(err)
			}

			slog.Error("Error in http handler",
				slog.String("method", ctx.Request.Method),
				slog.String("path", ctx.Request.URL.Path),
				slog.String("error", err.Error()))
		}
	}
}
