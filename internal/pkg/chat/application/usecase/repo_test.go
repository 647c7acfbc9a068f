package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
)

// memRepo is an in-memory ChatRepository used by the use case tests. The
// whole upsert-append runs under one lock, mirroring the single-transaction
// guarantee of the pg adapter.
type memRepo struct {
	mu         sync.Mutex
	convs      map[string]*chat.Conversation
	seq        int
	failAppend error
}

func newMemRepo() *memRepo {
	return &memRepo{convs: make(map[string]*chat.Conversation)}
}

var _ repository.ChatRepository = (*memRepo)(nil)

func (r *memRepo) FindConversation(ctx context.Context, userEmail, farmerEmail string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[chat.RoomKey(userEmail, farmerEmail)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *conv
	out.Messages = append([]chat.Message(nil), conv.Messages...)
	if len(out.Messages) > 0 {
		last := out.Messages[len(out.Messages)-1]
		out.LastMessage = &last
	}
	return &out, nil
}

func (r *memRepo) AppendMessage(ctx context.Context, userEmail, farmerEmail string, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAppend != nil {
		return chat.Message{}, r.failAppend
	}

	key := chat.RoomKey(userEmail, farmerEmail)
	conv, ok := r.convs[key]
	if !ok {
		r.seq++
		conv = &chat.Conversation{
			ID:          "conv-" + strconv.Itoa(r.seq),
			UserEmail:   chat.NormalizeEmail(userEmail),
			FarmerEmail: chat.NormalizeEmail(farmerEmail),
			CreatedAt:   m.CreatedAt,
		}
		r.convs[key] = conv
	}

	r.seq++
	m.ID = "msg-" + strconv.Itoa(r.seq)
	m.ConversationID = conv.ID
	conv.Messages = append(conv.Messages, m)
	conv.LastMessageAt = m.CreatedAt
	return m, nil
}

func (r *memRepo) ListConversations(ctx context.Context, email string, role chat.Role) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = chat.NormalizeEmail(email)
	var out []chat.Conversation
	for _, conv := range r.convs {
		if (role == chat.RoleCustomer && conv.UserEmail == email) ||
			(role == chat.RoleFarmer && conv.FarmerEmail == email) {
			c := *conv
			c.Messages = nil
			if n := len(conv.Messages); n > 0 {
				last := conv.Messages[n-1]
				c.LastMessage = &last
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (r *memRepo) conversationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

var errStoreDown = errors.New("store unavailable")
