package handler

import (
	"net/http"

	"chatgraph/internal/metrics"
	"chatgraph/internal/transport/httpdto"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
)

type GraphQLHandler struct {
	schema *graphql.Schema
	logger *logger.Logger
}

func NewGraphQLHandler(schema *graphql.Schema, l *logger.Logger) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, logger: l}
}

// Serve executes a query or mutation. GraphQL errors are part of a 200 body.
func (h *GraphQLHandler) Serve(c *gin.Context) {
	var req httpdto.GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	resp := h.schema.Exec(c.Request.Context(), req.Query, req.OperationName, req.Variables)

	outcome := "ok"
	if len(resp.Errors) > 0 {
		outcome = "error"
		if h.logger != nil {
			h.logger.WithContext(c.Request.Context()).Sugar().Debugf("graphql %s failed: %v", OperationLabel(req.OperationName), resp.Errors)
		}
	}
	metrics.GraphQLOperations.WithLabelValues(OperationLabel(req.OperationName), outcome).Inc()

	c.JSON(http.StatusOK, resp)
}

func OperationLabel(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}
