package chat

import (
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. CreatedAt is assigned
// server-side at persistence time; clients never supply it.
type Message struct {
	ID             string      `db:"id"`
	ConversationID string      `db:"conversation_id"`
	Sender         Participant `db:"sender"`
	Content        string      `db:"content"`
	IsRead         bool        `db:"is_read"`
	CreatedAt      time.Time   `db:"created_at"`
}

// NewMessage validates and normalizes a message prior to persistence.
// The sender email is normalized, content is trimmed and must be non-empty,
// and a zero CreatedAt is stamped with now.
func NewMessage(sender Participant, content string, now time.Time) (Message, error) {
	if !sender.Role.Valid() {
		return Message{}, ErrInvalidRole
	}
	email := NormalizeEmail(sender.Email)
	if email == "" {
		return Message{}, ErrMissingParty
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyMessage
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Message{
		Sender:    Participant{Role: sender.Role, Email: email},
		Content:   content,
		IsRead:    false,
		CreatedAt: now.UTC(),
	}, nil
}

// DerivePair maps a sender/receiver participant pair onto the conversation's
// (userEmail, farmerEmail) slots: whichever side carries the customer role
// supplies userEmail, the other supplies farmerEmail. Exactly one of the two
// must be a customer and the other a farmer.
func DerivePair(sender, receiver Participant) (userEmail, farmerEmail string, err error) {
	senderEmail := NormalizeEmail(sender.Email)
	receiverEmail := NormalizeEmail(receiver.Email)
	if senderEmail == "" || receiverEmail == "" {
		return "", "", ErrMissingParty
	}

	switch {
	case sender.Role == RoleCustomer && receiver.Role == RoleFarmer:
		return senderEmail, receiverEmail, nil
	case sender.Role == RoleFarmer && receiver.Role == RoleCustomer:
		return receiverEmail, senderEmail, nil
	}
	return "", "", ErrInvalidRole
}
