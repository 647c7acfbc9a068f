package port

import (
	"context"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
)

// Directory resolves display names for marketplace identities. It is the
// boundary the chat inbox consumes; the marketplace profile CRUD behind it
// is a separate concern.
//
// Implementations must tolerate unknown identities by returning the raw
// email as the display name rather than an error.
type Directory interface {
	DisplayName(ctx context.Context, role chat.Role, email string) (string, error)
}
