package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/queue/port"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/adapter"
)

// SendMessageTaskType is the queue task name for sending a message within the chat domain.
const SendMessageTaskType = "chat:send_message"

// SendMessageTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type SendMessageTaskPayload struct {
	SenderType    string `json:"senderType"`
	SenderEmail   string `json:"senderEmail"`
	ReceiverType  string `json:"receiverType"`
	ReceiverEmail string `json:"receiverEmail"`
	Content       string `json:"content"`
}

// RegisterSendMessageTask binds the task handler to the provided server.
// The handler runs the same upsert-append use case as the socket path, so a
// queued first contact also creates the conversation implicitly.
func RegisterSendMessageTask(srv qport.Server, pool *pgxpool.Pool) {
	srv.Register(SendMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := repoAdapter.NewPgChatRepository(pool)
		uc := usecase.NewSendMessageUseCase(repo)

		in := usecase.SendMessageInput{
			SenderType:    p.SenderType,
			SenderEmail:   p.SenderEmail,
			ReceiverType:  p.ReceiverType,
			ReceiverEmail: p.ReceiverEmail,
			Content:       p.Content,
		}

		// give DB a reasonable time budget per task execution
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err := uc.Execute(ctx, in)
		if err != nil {
			// The retry/backoff policy is controlled by the adapter/server.
			return err
		}
		return nil
	})
}
