package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"chatgraph/internal/transport/httpdto"
	"chatgraph/pkg/database"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db    *sql.DB
	redis *goredis.Client
}

// NewHealthHandler builds the handler; redis may be nil.
func NewHealthHandler(db *sql.DB, redis *goredis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
		return
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
}
