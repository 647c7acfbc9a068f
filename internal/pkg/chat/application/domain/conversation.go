package chat

import (
	"errors"
	"time"
)

// Domain-level errors for chat behaviors
var (
	ErrInvalidRole    = errors.New("chat: sender and receiver must be one customer and one farmer")
	ErrEmptyMessage   = errors.New("chat: message content is required")
	ErrMissingParty   = errors.New("chat: sender and receiver emails are required")
	ErrNotParticipant = errors.New("chat: sender is not a participant in the conversation")
)

// Conversation is the persisted thread between exactly one customer and one
// farmer. The normalized (UserEmail, FarmerEmail) pair is unique: at most one
// conversation exists per pair, created implicitly on first message.
type Conversation struct {
	ID            string    `db:"id"`
	UserEmail     string    `db:"user_email"`
	FarmerEmail   string    `db:"farmer_email"`
	Messages      []Message `db:"-"`
	LastMessage   *Message  `db:"-"`
	LastMessageAt time.Time `db:"last_message_at"`
	CreatedAt     time.Time `db:"created_at"`
}

// RoomKey returns the broadcast room for this conversation's pair.
func (c Conversation) RoomKey() string {
	return RoomKey(c.UserEmail, c.FarmerEmail)
}

// HasParticipant tells whether the given participant is one of the two sides.
func (c Conversation) HasParticipant(p Participant) bool {
	email := NormalizeEmail(p.Email)
	switch p.Role {
	case RoleCustomer:
		return email == NormalizeEmail(c.UserEmail)
	case RoleFarmer:
		return email == NormalizeEmail(c.FarmerEmail)
	}
	return false
}
