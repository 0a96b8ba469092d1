package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"chatgraph/internal/metrics"
	"chatgraph/internal/services"
	"chatgraph/internal/transport/httpdto"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

const readTimeout = 60 * time.Second

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// Handler serves GraphQL subscriptions over the graphql-ws protocol.
type Handler struct {
	auth     Authenticator
	schema   *graphql.Schema
	hub      *Hub
	log      connLogger
	upgrader websocket.Upgrader
}

func NewHandler(auth Authenticator, schema *graphql.Schema, hub *Hub, l *logger.Logger) *Handler {
	return &Handler{
		auth:   auth,
		schema: schema,
		hub:    hub,
		log:    newConnLogger(l),
		upgrader: websocket.Upgrader{
			Subprotocols: []string{Subprotocol},
			CheckOrigin:  func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Connect(c *gin.Context) {
	userID, err := h.auth.Authenticate(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := NewClient(conn, userID)
	ctx, cancel := context.WithCancel(services.WithUserContext(context.Background(), userID))
	defer cancel()

	h.hub.Register(client)
	h.log.Debug("connected", userID, client.ID)
	go client.WriteLoop(ctx)

	h.readLoop(ctx, client)

	open := client.OperationCount()
	client.StopAll()
	h.hub.Unregister(client)
	h.log.Debug("disconnected", userID, client.ID, zap.Int("open_operations", open))
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		var msg OperationMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.SendOperation(errorMessage("", MsgConnectionError, "malformed message"))
			continue
		}

		switch msg.Type {
		case MsgConnectionInit:
			client.SendOperation(OperationMessage{Type: MsgConnectionAck})
		case MsgStart:
			h.start(ctx, client, msg)
		case MsgStop:
			client.StopOperation(msg.ID)
		case MsgConnectionTerminate:
			return
		default:
			client.SendOperation(errorMessage(msg.ID, MsgError, "unknown message type "+msg.Type))
		}
	}
}

func (h *Handler) start(ctx context.Context, client *Client, msg OperationMessage) {
	if msg.ID == "" {
		client.SendOperation(errorMessage("", MsgError, "operation id is required"))
		return
	}

	var req httpdto.GraphQLRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil || req.Query == "" {
		client.SendOperation(errorMessage(msg.ID, MsgError, "invalid start payload"))
		return
	}

	opCtx, opCancel := context.WithCancel(ctx)
	if !client.StartOperation(msg.ID, opCancel) {
		opCancel()
		client.SendOperation(errorMessage(msg.ID, MsgError, "operation "+msg.ID+" is already running"))
		return
	}

	stream, err := h.schema.Subscribe(opCtx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		client.StopOperation(msg.ID)
		client.SendOperation(errorMessage(msg.ID, MsgError, err.Error()))
		h.log.Error("subscribe", client.UserID, client.ID, err)
		return
	}

	h.log.Debug("subscription_started", client.UserID, client.ID, zap.String("operation_id", msg.ID))
	go h.forward(opCtx, client, msg.ID, req.OperationName, stream)
}

// forward relays the subscription stream until it ends or the operation is stopped.
func (h *Handler) forward(ctx context.Context, client *Client, id, operationName string, stream <-chan interface{}) {
	metrics.ActiveSubscriptions.Inc()
	defer metrics.ActiveSubscriptions.Dec()

	outcome := "ok"
	for response := range stream {
		payload, err := json.Marshal(response)
		if err != nil {
			h.log.Error("encode", client.UserID, client.ID, err)
			continue
		}
		if resp, ok := response.(*graphql.Response); ok && len(resp.Errors) > 0 {
			outcome = "error"
		}
		client.SendOperation(OperationMessage{ID: id, Type: MsgData, Payload: payload})
	}

	if operationName == "" {
		operationName = "anonymous"
	}
	metrics.GraphQLOperations.WithLabelValues(operationName, outcome).Inc()

	if ctx.Err() == nil {
		client.StopOperation(id)
	}
	client.SendOperation(OperationMessage{ID: id, Type: MsgComplete})
	h.log.Debug("subscription_completed", client.UserID, client.ID, zap.String("operation_id", id))
}
