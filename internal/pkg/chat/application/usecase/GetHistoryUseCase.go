package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
)

// GetHistoryInput identifies the pair whose message history is requested.
type GetHistoryInput struct {
	UserEmail   string
	FarmerEmail string
}

// GetHistoryOutput is the ordered message list for the pair. ConversationID
// is empty when the pair has never exchanged a message; that is a valid
// state, not an error.
type GetHistoryOutput struct {
	ConversationID string
	Messages       []chat.Message
}

// GetHistoryUseCase serves the initial-load/refresh read of a thread.
type GetHistoryUseCase struct {
	Repo repository.ChatRepository
}

func NewGetHistoryUseCase(repo repository.ChatRepository) *GetHistoryUseCase {
	return &GetHistoryUseCase{Repo: repo}
}

func (uc *GetHistoryUseCase) Execute(ctx context.Context, in GetHistoryInput) (*GetHistoryOutput, error) {
	if in.UserEmail == "" || in.FarmerEmail == "" {
		return nil, fmt.Errorf("userEmail and farmerEmail are required")
	}

	conv, err := uc.Repo.FindConversation(ctx, in.UserEmail, in.FarmerEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return &GetHistoryOutput{Messages: []chat.Message{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgs := conv.Messages
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return &GetHistoryOutput{ConversationID: conv.ID, Messages: msgs}, nil
}
