package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitebook/internal/core/apperror"
	"sitebook/pkg/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler turns errors registered with c.Error into the JSON envelope.
// Internal causes are logged and never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		body := ErrorResponse{
			Error:   "Internal server error",
			Code:    apperror.CodeInternal,
			Details: map[string]any{"request_id": c.GetString("request_id")},
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			body.Error = appErr.Message
			body.Code = appErr.Code
			body.Details = appErr.Details
			if status >= http.StatusInternalServerError {
				body.Details = map[string]any{"request_id": c.GetString("request_id")}
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
		}

		failIdempotency(c, status, body)
		c.JSON(status, body)
	}
}
