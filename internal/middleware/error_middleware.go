package middleware

import (
	"chatgraph/internal/transport/httpdto"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := httpdto.ErrorFor(err)
		if l != nil && status >= 500 {
			l.WithContext(c.Request.Context()).Sugar().Errorf("request error: %s", err.Error())
		}
		c.JSON(status, body)
	}
}
