package gql

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/domain/user"
	"chatgraph/internal/events"
	"chatgraph/internal/mocks"
	"chatgraph/internal/services"
	chat_errors "chatgraph/pkg/errors"
	"chatgraph/pkg/logger"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type schemaFixture struct {
	chats  *mocks.MockChatRepository
	users  *mocks.MockUserRepository
	bus    *events.LocalBus
	schema *graphql.Schema
}

func newSchemaFixture(t *testing.T) schemaFixture {
	ctrl := gomock.NewController(t)
	chats := mocks.NewMockChatRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	bus := events.NewLocalBus()

	userService := services.NewUserService(users, nil)
	chatService := services.NewChatService(chats, userService, bus, logger.NewNop())
	schema, err := NewSchema(NewResolver(chatService, userService, bus), logger.NewNop())
	require.NoError(t, err)

	return schemaFixture{chats: chats, users: users, bus: bus, schema: schema}
}

func TestSchema_ChatsQuery(t *testing.T) {
	req := require.New(t)
	f := newSchemaFixture(t)
	me := user.User{ID: uuid.New(), Username: "me", Name: "Me"}
	bob := user.User{ID: uuid.New(), Username: "bob", Name: "Bob"}
	ctx := services.WithUserContext(context.Background(), me.ID)
	direct := chat.NewDirect(me.ID, bob.ID, time.Now())

	f.chats.EXPECT().ListByListingMember(gomock.Any(), me.ID).Return([]chat.Chat{direct}, nil)
	f.users.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return([]user.User{bob, me}, nil)

	resp := f.schema.Exec(ctx, `{ chats { id name isGroup owner { id } allTimeMembers { name } } }`, "", nil)
	req.Empty(resp.Errors)

	var data struct {
		Chats []struct {
			ID             string
			Name           *string
			IsGroup        bool
			Owner          *struct{ ID string }
			AllTimeMembers []struct{ Name string }
		}
	}
	req.NoError(json.Unmarshal(resp.Data, &data))
	req.Len(data.Chats, 1)
	req.Equal(direct.ID.String(), data.Chats[0].ID)
	req.Nil(data.Chats[0].Name)
	req.False(data.Chats[0].IsGroup)
	req.Nil(data.Chats[0].Owner)
	req.Equal([]struct{ Name string }{{"Me"}, {"Bob"}}, data.Chats[0].AllTimeMembers)
}

func TestSchema_ChatQuery(t *testing.T) {
	me := uuid.New()
	ctx := services.WithUserContext(context.Background(), me)

	t.Run("should return null for an unknown chat", func(t *testing.T) {
		f := newSchemaFixture(t)
		id := uuid.New()
		f.chats.EXPECT().GetByID(gomock.Any(), id).Return(chat.Chat{}, chat_errors.ErrNotFound)

		resp := f.schema.Exec(ctx, `query($id: ID!) { chat(chatId: $id) { id } }`, "",
			map[string]interface{}{"id": id.String()})
		require.Empty(t, resp.Errors)
		require.JSONEq(t, `{"chat":null}`, string(resp.Data))
	})

	t.Run("should report a malformed id", func(t *testing.T) {
		f := newSchemaFixture(t)

		resp := f.schema.Exec(ctx, `{ chat(chatId: "nope") { id } }`, "", nil)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, "invalid input")
	})

	t.Run("should require an authenticated user", func(t *testing.T) {
		f := newSchemaFixture(t)

		resp := f.schema.Exec(context.Background(), `{ chats { id } }`, "", nil)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Message, "unauthorized")
	})
}

func TestSchema_UpdateChatMutation(t *testing.T) {
	req := require.New(t)
	f := newSchemaFixture(t)
	me, other := uuid.New(), uuid.New()
	ctx := services.WithUserContext(context.Background(), me)
	direct := chat.NewDirect(me, other, time.Now())

	f.chats.EXPECT().GetByID(gomock.Any(), direct.ID).Return(direct, nil)

	resp := f.schema.Exec(ctx, `mutation($id: ID!) { updateChat(chatId: $id, name: "renamed") { id name } }`, "",
		map[string]interface{}{"id": direct.ID.String()})
	req.Empty(resp.Errors)
	req.JSONEq(`{"updateChat":{"id":"`+direct.ID.String()+`","name":null}}`, string(resp.Data))
}

func TestSchema_RemoveChatMutation(t *testing.T) {
	req := require.New(t)
	f := newSchemaFixture(t)
	me, other := uuid.New(), uuid.New()
	ctx := services.WithUserContext(context.Background(), me)
	direct := chat.NewDirect(me, other, time.Now())

	f.chats.EXPECT().GetByID(gomock.Any(), direct.ID).Return(direct, nil)
	f.chats.EXPECT().Delete(gomock.Any(), direct.ID).Return(nil)

	resp := f.schema.Exec(ctx, `mutation($id: ID!) { removeChat(chatId: $id) }`, "",
		map[string]interface{}{"id": direct.ID.String()})
	req.Empty(resp.Errors)
	req.JSONEq(`{"removeChat":"`+direct.ID.String()+`"}`, string(resp.Data))
}

func TestSchema_ChatAddedSubscription(t *testing.T) {
	req := require.New(t)
	f := newSchemaFixture(t)
	me, other := uuid.New(), uuid.New()
	ctx, cancel := context.WithCancel(services.WithUserContext(context.Background(), me))
	defer cancel()

	stream, err := f.schema.Subscribe(ctx, `subscription { chatAdded { id name } }`, "", nil)
	req.NoError(err)

	mine := chat.NewGroup(me, []uuid.UUID{other}, "mine", nil, time.Now())
	theirs := chat.NewGroup(other, []uuid.UUID{me}, "theirs", nil, time.Now())
	req.NoError(f.bus.Publish(ctx, events.NewEnvelope(events.TopicChatAdded, me, mine)))
	req.NoError(f.bus.Publish(ctx, events.NewEnvelope(events.TopicChatAdded, other, theirs)))

	select {
	case msg := <-stream:
		resp, ok := msg.(*graphql.Response)
		req.True(ok)
		req.Empty(resp.Errors)
		req.JSONEq(`{"chatAdded":{"id":"`+theirs.ID.String()+`","name":"theirs"}}`, string(resp.Data))
	case <-time.After(time.Second):
		t.Fatal("no subscription payload")
	}
}
