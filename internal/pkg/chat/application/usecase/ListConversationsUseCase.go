package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
	profile "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"
)

// ListConversationsInput identifies whose inbox to build. Role selects which
// slot of the pair the email must occupy.
type ListConversationsInput struct {
	Email string
	Role  chat.Role
}

// ConversationPreview is one inbox row: the counterparty plus the freshest
// message, ready to render without further lookups.
type ConversationPreview struct {
	ConversationID   string
	UserEmail        string
	FarmerEmail      string
	CounterpartEmail string
	CounterpartName  string
	LastMessage      *chat.Message
	LastMessageAt    time.Time
	CreatedAt        time.Time
}

// ListConversationsUseCase builds the inbox projection: every conversation
// involving the identity, counterpart names resolved via the profile
// directory, ordered by most recent activity.
type ListConversationsUseCase struct {
	Repo     repository.ChatRepository
	Profiles profile.Directory
}

func NewListConversationsUseCase(repo repository.ChatRepository, profiles profile.Directory) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Profiles: profiles}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]ConversationPreview, error) {
	if in.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !in.Role.Valid() {
		return nil, chat.ErrInvalidRole
	}

	convs, err := uc.Repo.ListConversations(ctx, in.Email, in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	previews := make([]ConversationPreview, 0, len(convs))
	for _, conv := range convs {
		counterpartRole := chat.RoleFarmer
		counterpartEmail := conv.FarmerEmail
		if in.Role == chat.RoleFarmer {
			counterpartRole = chat.RoleCustomer
			counterpartEmail = conv.UserEmail
		}

		name := counterpartEmail
		if uc.Profiles != nil {
			if resolved, err := uc.Profiles.DisplayName(ctx, counterpartRole, counterpartEmail); err == nil && resolved != "" {
				name = resolved
			}
		}

		previews = append(previews, ConversationPreview{
			ConversationID:   conv.ID,
			UserEmail:        conv.UserEmail,
			FarmerEmail:      conv.FarmerEmail,
			CounterpartEmail: counterpartEmail,
			CounterpartName:  name,
			LastMessage:      conv.LastMessage,
			LastMessageAt:    conv.LastMessageAt,
			CreatedAt:        conv.CreatedAt,
		})
	}
	return previews, nil
}
