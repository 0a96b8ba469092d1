package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/events"
	"chatgraph/internal/gql"
	"chatgraph/internal/mocks"
	"chatgraph/internal/services"
	chat_errors "chatgraph/pkg/errors"
	"chatgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type tokenAuth map[string]uuid.UUID

func (a tokenAuth) Authenticate(token string) (uuid.UUID, error) {
	if id, ok := a[token]; ok {
		return id, nil
	}
	return uuid.Nil, chat_errors.ErrUnauthorized
}

type wsFixture struct {
	server *httptest.Server
	bus    *events.LocalBus
	hub    *Hub
}

func newWSFixture(t *testing.T, auth tokenAuth) wsFixture {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	bus := events.NewLocalBus()
	users := services.NewUserService(mocks.NewMockUserRepository(ctrl), nil)
	chats := services.NewChatService(mocks.NewMockChatRepository(ctrl), users, bus, logger.NewNop())
	schema, err := gql.NewSchema(gql.NewResolver(chats, users, bus), logger.NewNop())
	require.NoError(t, err)

	hub := NewHub()
	router := gin.New()
	router.GET("/graphql/ws", NewHandler(auth, schema, hub, logger.NewNop()).Connect)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return wsFixture{server: server, bus: bus, hub: hub}
}

func (f wsFixture) dial(t *testing.T, token string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/graphql/ws?token=" + token
	dialer := websocket.Dialer{Subprotocols: []string{Subprotocol}, HandshakeTimeout: time.Second}
	return dialer.Dial(url, nil)
}

func readOperation(t *testing.T, conn *websocket.Conn) OperationMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OperationMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHandler_RejectsUnknownToken(t *testing.T) {
	f := newWSFixture(t, tokenAuth{})

	_, resp, err := f.dial(t, "nope")
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_StreamsChatAdded(t *testing.T) {
	req := require.New(t)
	me, other := uuid.New(), uuid.New()
	f := newWSFixture(t, tokenAuth{"me": me})

	conn, _, err := f.dial(t, "me")
	req.NoError(err)
	defer conn.Close()
	req.Equal(Subprotocol, conn.Subprotocol())

	req.NoError(conn.WriteJSON(OperationMessage{Type: MsgConnectionInit}))
	req.Equal(MsgConnectionAck, readOperation(t, conn).Type)

	start, err := json.Marshal(map[string]string{"query": "subscription { chatAdded { id name } }"})
	req.NoError(err)
	req.NoError(conn.WriteJSON(OperationMessage{ID: "1", Type: MsgStart, Payload: start}))

	group := chat.NewGroup(other, []uuid.UUID{me}, "team", nil, time.Now())
	// The start message is handled asynchronously, so publish until the
	// subscription picks one up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = f.bus.Publish(context.Background(), events.NewEnvelope(events.TopicChatAdded, other, group))
			}
		}
	}()

	msg := readOperation(t, conn)
	req.Equal(MsgData, msg.Type)
	req.Equal("1", msg.ID)
	req.JSONEq(`{"data":{"chatAdded":{"id":"`+group.ID.String()+`","name":"team"}}}`, string(msg.Payload))

	req.NoError(conn.WriteJSON(OperationMessage{ID: "1", Type: MsgStop}))
	for {
		msg = readOperation(t, conn)
		if msg.Type != MsgData {
			break
		}
	}
	req.Equal(MsgComplete, msg.Type)
	req.Equal("1", msg.ID)
	req.Equal(1, f.hub.GetClientCount())
}

func TestHandler_UnknownMessageType(t *testing.T) {
	me := uuid.New()
	f := newWSFixture(t, tokenAuth{"me": me})

	conn, _, err := f.dial(t, "me")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(OperationMessage{ID: "7", Type: "bogus"}))
	msg := readOperation(t, conn)
	require.Equal(t, MsgError, msg.Type)
	require.Equal(t, "7", msg.ID)
}
