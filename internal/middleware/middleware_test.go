package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatgraph/internal/redis"
	"chatgraph/internal/services"
	chat_errors "chatgraph/pkg/errors"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticAuthenticator map[string]uuid.UUID

func (a staticAuthenticator) Authenticate(token string) (uuid.UUID, error) {
	if id, ok := a[token]; ok {
		return id, nil
	}
	return uuid.Nil, chat_errors.ErrUnauthorized
}

type countingLimiter struct {
	limit int
	calls int
}

func (l *countingLimiter) allow() (*redis.RateLimitResult, error) {
	l.calls++
	return &redis.RateLimitResult{
		Allowed:   l.calls <= l.limit,
		Remaining: max(l.limit-l.calls, 0),
		ResetIn:   time.Minute,
		Limit:     l.limit,
	}, nil
}

func (l *countingLimiter) AllowAuth(context.Context, string) (*redis.RateLimitResult, error) {
	return l.allow()
}

func (l *countingLimiter) AllowMutation(context.Context, string) (*redis.RateLimitResult, error) {
	return l.allow()
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	router := gin.New()
	router.Use(AuthMiddleware(staticAuthenticator{"good": userID}))
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := services.UserIDFromContext(c.Request.Context())
		require.True(t, ok)
		require.Equal(t, userID.String(), c.Request.Context().Value(logger.UserIdKey))
		c.String(http.StatusOK, id.String())
	})

	t.Run("should put the user id into the request context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, userID.String(), rec.Body.String())
	})

	t.Run("should reject missing or unknown tokens", func(t *testing.T) {
		for _, header := range []string{"", "Bearer bad", "Basic good"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", header)
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code, header)
		}
	})
}

func TestAuthRateLimitMiddleware(t *testing.T) {
	req := require.New(t)
	limiter := &countingLimiter{limit: 2}
	router := gin.New()
	router.POST("/login", AuthRateLimitMiddleware(limiter), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, rec.Code)
		if i == 0 {
			req.Equal("2", rec.Header().Get("X-RateLimit-Limit"))
			req.Equal("1", rec.Header().Get("X-RateLimit-Remaining"))
		}
	}
	req.Equal([]int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestMutationRateLimitMiddleware_SkipsAnonymous(t *testing.T) {
	limiter := &countingLimiter{limit: 0}
	router := gin.New()
	router.POST("/graphql", MutationRateLimitMiddleware(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, limiter.calls)
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: chat x doesn't exist", chat_errors.ErrNotFound), http.StatusNotFound},
		{chat_errors.ErrInvalidInput, http.StatusBadRequest},
		{chat_errors.ErrAlreadyExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(logger.NewNop()))
			router.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/id", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIdKey).(string)
		c.String(http.StatusOK, id)
	})

	serve := func(header string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		if header != "" {
			req.Header.Set(RequestIDHeader, header)
		}
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("should keep a well-formed client id", func(t *testing.T) {
		rec := serve("edge-7f3a.01")
		require.Equal(t, "edge-7f3a.01", rec.Body.String())
		require.Equal(t, "edge-7f3a.01", rec.Header().Get(RequestIDHeader))
	})

	t.Run("should generate an id when none is sent", func(t *testing.T) {
		rec := serve("")
		require.Len(t, rec.Body.String(), 32)
		require.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
	})

	t.Run("should replace malformed ids", func(t *testing.T) {
		for _, header := range []string{"has space", "quote\"d", strings.Repeat("a", 65)} {
			rec := serve(header)
			require.NotEqual(t, header, rec.Body.String())
			require.Len(t, rec.Body.String(), 32, header)
		}
	})
}
