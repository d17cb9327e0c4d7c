package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/pkg/api"
)

// ErrorHandler converts errors attached by handlers into JSON responses.
// RFC 9457 problems keep their status; anything else becomes a 500.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*api.Problem); ok {
			if problem.Log != nil {
				logger.Error("Request problem", zap.Error(problem.Log))
			}
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		logger.Error("Unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.NewError(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))
		c.Abort()
	}
}
