package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/realtime"
	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/usecase"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
)

// stubRepo is a minimal in-memory ChatRepository for protocol tests.
type stubRepo struct {
	mu         sync.Mutex
	convs      map[string]*chat.Conversation
	seq        int
	failAppend bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{convs: make(map[string]*chat.Conversation)}
}

func (r *stubRepo) FindConversation(ctx context.Context, userEmail, farmerEmail string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[chat.RoomKey(userEmail, farmerEmail)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *conv
	out.Messages = append([]chat.Message(nil), conv.Messages...)
	return &out, nil
}

func (r *stubRepo) AppendMessage(ctx context.Context, userEmail, farmerEmail string, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAppend {
		return chat.Message{}, fmt.Errorf("store unavailable")
	}
	key := chat.RoomKey(userEmail, farmerEmail)
	conv, ok := r.convs[key]
	if !ok {
		r.seq++
		conv = &chat.Conversation{
			ID:          fmt.Sprintf("conv-%d", r.seq),
			UserEmail:   chat.NormalizeEmail(userEmail),
			FarmerEmail: chat.NormalizeEmail(farmerEmail),
		}
		r.convs[key] = conv
	}
	r.seq++
	m.ID = fmt.Sprintf("msg-%d", r.seq)
	m.ConversationID = conv.ID
	conv.Messages = append(conv.Messages, m)
	conv.LastMessageAt = m.CreatedAt
	return m, nil
}

func (r *stubRepo) ListConversations(ctx context.Context, email string, role chat.Role) ([]chat.Conversation, error) {
	return nil, nil
}

// frameSub decodes every delivered payload into a generic frame.
type frameSub struct {
	id     string
	mu     sync.Mutex
	frames []map[string]any
}

func (s *frameSub) ID() string { return s.id }

func (s *frameSub) Send(payload []byte) error {
	var frame map[string]any
	if err := json.Unmarshal(payload, &frame); err != nil {
		return err
	}
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	s.mu.Unlock()
	return nil
}

func (s *frameSub) byType(frameType string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, f := range s.frames {
		if f["type"] == frameType {
			out = append(out, f)
		}
	}
	return out
}

func newTestController(repo repository.ChatRepository) (*ChatSocketController, *realtime.Router) {
	router := realtime.NewRouter()
	return NewChatSocketControllerWithRepo(repo, router), router
}

func join(ctl *ChatSocketController, router *realtime.Router, sub *frameSub, userEmail, farmerEmail string) {
	router.Attach(sub)
	ctl.handleJoin(sub, inboundFrame{Type: "join", UserEmail: userEmail, FarmerEmail: farmerEmail})
}

func TestHandleJoin_AcksNormalizedRoom(t *testing.T) {
	ctl, router := newTestController(newStubRepo())
	sub := &frameSub{id: "s1"}
	router.Attach(sub)

	// Joining works before any conversation record exists.
	ctl.handleJoin(sub, inboundFrame{Type: "join", UserEmail: "Alice@Example.com", FarmerEmail: " Bob@Farm.com "})

	acks := sub.byType("joined")
	require.Len(t, acks, 1)
	assert.Equal(t, "alice@example.com_bob@farm.com", acks[0]["room"])
	assert.Equal(t, 1, router.RoomSize("alice@example.com_bob@farm.com"))
}

func TestHandleJoin_RejectsMissingIdentifiers(t *testing.T) {
	ctl, router := newTestController(newStubRepo())
	sub := &frameSub{id: "s1"}
	router.Attach(sub)

	ctl.handleJoin(sub, inboundFrame{Type: "join", UserEmail: "alice@example.com"})

	require.Len(t, sub.byType("error"), 1)
	assert.Empty(t, sub.byType("joined"))
}

func TestHandleMessage_PersistsThenBroadcasts(t *testing.T) {
	repo := newStubRepo()
	ctl, router := newTestController(repo)

	// Alice has two tabs open; Bob sends without having joined.
	tab1 := &frameSub{id: "tab1"}
	tab2 := &frameSub{id: "tab2"}
	sender := &frameSub{id: "farmer"}
	join(ctl, router, tab1, "alice@example.com", "bob@farm.com")
	join(ctl, router, tab2, "alice@example.com", "bob@farm.com")
	router.Attach(sender)

	ctl.handleMessage(context.Background(), sender, inboundFrame{
		Type:          "message",
		SenderType:    "farmer",
		SenderEmail:   "Bob@Farm.com",
		ReceiverType:  "customer",
		ReceiverEmail: "Alice@Example.com",
		Content:       "Your order is ready",
	})

	// Both of Alice's sessions received the broadcast.
	for _, tab := range []*frameSub{tab1, tab2} {
		msgs := tab.byType("message")
		require.Len(t, msgs, 1)
		payload := msgs[0]["message"].(map[string]any)
		assert.Equal(t, "Your order is ready", payload["content"])
		assert.Equal(t, "farmer", payload["sender_type"])
		assert.Equal(t, "bob@farm.com", payload["sender_email"])
		assert.Equal(t, false, payload["is_read"])
	}

	// The sender is not in the room, so it only sees the ack.
	require.Len(t, sender.byType("sent"), 1)
	assert.Empty(t, sender.byType("message"))

	// A fresh history read sees the broadcast message.
	history := usecase.NewGetHistoryUseCase(repo)
	out, err := history.Execute(context.Background(), usecase.GetHistoryInput{
		UserEmail:   "alice@example.com",
		FarmerEmail: "bob@farm.com",
	})
	require.NoError(t, err)
	require.Len(t, out.Messages, 1)
	assert.Equal(t, "Your order is ready", out.Messages[0].Content)
}

func TestHandleMessage_NoBroadcastWithoutPersistence(t *testing.T) {
	repo := newStubRepo()
	repo.failAppend = true
	ctl, router := newTestController(repo)

	receiver := &frameSub{id: "receiver"}
	sender := &frameSub{id: "sender"}
	join(ctl, router, receiver, "alice@example.com", "bob@farm.com")
	router.Attach(sender)

	ctl.handleMessage(context.Background(), sender, inboundFrame{
		Type:          "message",
		SenderType:    "customer",
		SenderEmail:   "alice@example.com",
		ReceiverType:  "farmer",
		ReceiverEmail: "bob@farm.com",
		Content:       "hello",
	})

	assert.Empty(t, receiver.byType("message"))
	assert.Empty(t, sender.byType("sent"))
	errFrames := sender.byType("error")
	require.Len(t, errFrames, 1)
	assert.Equal(t, "internal_error", errFrames[0]["code"])
}

func TestHandleMessage_RejectsInvalidPayload(t *testing.T) {
	repo := newStubRepo()
	ctl, router := newTestController(repo)

	receiver := &frameSub{id: "receiver"}
	sender := &frameSub{id: "sender"}
	join(ctl, router, receiver, "alice@example.com", "bob@farm.com")
	router.Attach(sender)

	ctl.handleMessage(context.Background(), sender, inboundFrame{
		Type:          "message",
		SenderType:    "customer",
		SenderEmail:   "alice@example.com",
		ReceiverType:  "farmer",
		ReceiverEmail: "bob@farm.com",
	})

	errFrames := sender.byType("error")
	require.Len(t, errFrames, 1)
	assert.Equal(t, "bad_request", errFrames[0]["code"])
	assert.Empty(t, receiver.byType("message"))
	assert.Equal(t, 0, repo.seq)
}

func TestHandleMessage_OrderPreservedInBroadcasts(t *testing.T) {
	repo := newStubRepo()
	ctl, router := newTestController(repo)

	receiver := &frameSub{id: "receiver"}
	sender := &frameSub{id: "sender"}
	join(ctl, router, receiver, "alice@example.com", "bob@farm.com")
	router.Attach(sender)

	for i := 0; i < 5; i++ {
		ctl.handleMessage(context.Background(), sender, inboundFrame{
			Type:          "message",
			SenderType:    "customer",
			SenderEmail:   "alice@example.com",
			ReceiverType:  "farmer",
			ReceiverEmail: "bob@farm.com",
			Content:       fmt.Sprintf("message %d", i),
		})
	}

	msgs := receiver.byType("message")
	require.Len(t, msgs, 5)
	for i, frame := range msgs {
		payload := frame["message"].(map[string]any)
		assert.Equal(t, fmt.Sprintf("message %d", i), payload["content"])
	}
}

func TestHandleLeave_StopsDelivery(t *testing.T) {
	repo := newStubRepo()
	ctl, router := newTestController(repo)

	receiver := &frameSub{id: "receiver"}
	sender := &frameSub{id: "sender"}
	join(ctl, router, receiver, "alice@example.com", "bob@farm.com")
	router.Attach(sender)

	ctl.handleLeave(receiver, inboundFrame{Type: "leave", UserEmail: "alice@example.com", FarmerEmail: "bob@farm.com"})
	require.Len(t, receiver.byType("left"), 1)

	ctl.handleMessage(context.Background(), sender, inboundFrame{
		Type:          "message",
		SenderType:    "customer",
		SenderEmail:   "alice@example.com",
		ReceiverType:  "farmer",
		ReceiverEmail: "bob@farm.com",
		Content:       "anyone there?",
	})

	assert.Empty(t, receiver.byType("message"))
	require.Len(t, sender.byType("sent"), 1)
}
