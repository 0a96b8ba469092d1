package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-Id"

	maxRequestIDLength = 64
)

// RequestIDMiddleware tags every request with an id, echoed in the response
// header and logged through logger.WithContext. A well-formed id sent by the
// client (or a proxy in front of it) is kept so the logs of both sides line up.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = newRequestID()
		}
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIdKey, requestID))
		c.Next()
	}
}

// validRequestID rejects ids that would bloat or break log lines.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}

// newRequestID returns 32 hex characters.
func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
