package middleware

import (
	"errors"
	"net/http"

	"contact-relay/internal/delivery/http/response"
	"contact-relay/pkg/apperror"
	"contact-relay/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error. Underlying error text is
// only sent to the client when exposeDetails is set (development environment).
func ErrorHandler(exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			var detail interface{}
			if exposeDetails && appErr.Detail() != "" {
				detail = appErr.Detail()
			}
			response.Error(c, appErr.Code, appErr.Message, detail)
			return
		}

		// SECURITY: Never expose internal error details to clients in production.
		logger.Log.ErrorContext(c.Request.Context(), "Internal Server Error",
			"error", err,
			"path", c.FullPath())
		var detail interface{}
		if exposeDetails {
			detail = err.Error()
		}
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", detail)
	}
}
