package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the five fields of a send request. All of them are
// required; the pair slots are derived from the two roles rather than taken
// from the caller.
type SendMessageInput struct {
	SenderType    string
	SenderEmail   string
	ReceiverType  string
	ReceiverEmail string
	Content       string
}

// SendMessageOutput is the persisted message plus its room addressing.
type SendMessageOutput struct {
	Message     chat.Message
	UserEmail   string
	FarmerEmail string
	Room        string
}

// SendMessageUseCase validates a send request, stamps the server timestamp
// and appends the message through the repository's atomic upsert. The
// conversation comes into existence on first send; there is no separate
// creation step.
type SendMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if in.SenderType == "" || in.SenderEmail == "" || in.ReceiverType == "" || in.ReceiverEmail == "" || in.Content == "" {
		return nil, fmt.Errorf("senderType, senderEmail, receiverType, receiverEmail and content are required")
	}

	sender := chat.Participant{Role: chat.Role(in.SenderType), Email: in.SenderEmail}
	receiver := chat.Participant{Role: chat.Role(in.ReceiverType), Email: in.ReceiverEmail}

	userEmail, farmerEmail, err := chat.DerivePair(sender, receiver)
	if err != nil {
		return nil, err
	}

	msg, err := chat.NewMessage(sender, in.Content, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	stored, err := uc.Repo.AppendMessage(ctx, userEmail, farmerEmail, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &SendMessageOutput{
		Message:     stored,
		UserEmail:   userEmail,
		FarmerEmail: farmerEmail,
		Room:        chat.RoomKey(userEmail, farmerEmail),
	}, nil
}
