package repository

import (
	"context"
	"errors"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
)

// ErrNotFound signals that no conversation exists for the requested pair.
// History reads treat it as an empty result, not a failure.
var ErrNotFound = errors.New("chat repository: conversation not found")

// ChatRepository defines persistence operations for the chat domain.
//
// AppendMessage must be atomic with respect to the conversation existence
// check: two concurrent first messages for the same pair must land in a
// single conversation. Implementations may not use separate read-then-write
// steps without their own mutual exclusion.
type ChatRepository interface {
	// FindConversation looks up the conversation for the normalized pair,
	// messages in chronological order. Returns ErrNotFound when absent.
	FindConversation(ctx context.Context, userEmail, farmerEmail string) (*chat.Conversation, error)

	// AppendMessage upserts the conversation for the pair and appends the
	// message, advancing last_message_at. It returns the stored message with
	// its conversation id filled in. Nothing is partially applied on error.
	AppendMessage(ctx context.Context, userEmail, farmerEmail string, m chat.Message) (chat.Message, error)

	// ListConversations returns conversations where email occupies the given
	// role slot, most recent activity first, each carrying its last message.
	ListConversations(ctx context.Context, email string, role chat.Role) ([]chat.Conversation, error)
}
