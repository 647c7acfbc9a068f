package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository persists conversations and messages in Postgres.
// Emails are normalized before every read and write; the unique index on
// (user_email, farmer_email) backs the upsert in AppendMessage.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

func (r *PgChatRepository) FindConversation(ctx context.Context, userEmail, farmerEmail string) (*chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	userEmail = chat.NormalizeEmail(userEmail)
	farmerEmail = chat.NormalizeEmail(farmerEmail)

	var conv chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, user_email, farmer_email, last_message_at, created_at
		FROM chat.conversation
		WHERE user_email = $1 AND farmer_email = $2
	`, userEmail, farmerEmail).Scan(&conv.ID, &conv.UserEmail, &conv.FarmerEmail, &conv.LastMessageAt, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	msgs, err := r.messagesFor(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	conv.Messages = msgs
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		conv.LastMessage = &last
	}
	return &conv, nil
}

// AppendMessage runs the upsert and the message insert in one transaction so
// a failure leaves neither a dangling conversation nor an orphaned message.
// The ON CONFLICT clause makes the existence check and the insert a single
// statement, which keeps concurrent first messages from forking the thread.
func (r *PgChatRepository) AppendMessage(ctx context.Context, userEmail, farmerEmail string, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}
	userEmail = chat.NormalizeEmail(userEmail)
	farmerEmail = chat.NormalizeEmail(farmerEmail)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var conversationID string
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.conversation (user_email, farmer_email, last_message_at, created_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_email, farmer_email)
		DO UPDATE SET last_message_at = EXCLUDED.last_message_at
		RETURNING id::text
	`, userEmail, farmerEmail, m.CreatedAt).Scan(&conversationID)
	if err != nil {
		return chat.Message{}, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_role, sender_email, content, is_read, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		RETURNING id::text
	`, conversationID, string(m.Sender.Role), m.Sender.Email, m.Content, m.IsRead, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return chat.Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Message{}, err
	}

	m.ConversationID = conversationID
	return m, nil
}

func (r *PgChatRepository) ListConversations(ctx context.Context, email string, role chat.Role) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	email = chat.NormalizeEmail(email)

	column := "user_email"
	if role == chat.RoleFarmer {
		column = "farmer_email"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.user_email, c.farmer_email, c.last_message_at, c.created_at,
		       m.id::text, m.sender_role, m.sender_email, m.content, m.is_read, m.created_at
		FROM chat.conversation c
		LEFT JOIN LATERAL (
			SELECT id, sender_role, sender_email, content, is_read, created_at
			FROM chat.message
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) m ON true
		WHERE c.`+column+` = $1
		ORDER BY c.last_message_at DESC
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var (
			conv       chat.Conversation
			msgID      *string
			senderRole *string
			senderMail *string
			content    *string
			isRead     *bool
			msgCreated *time.Time
		)
		if err := rows.Scan(
			&conv.ID, &conv.UserEmail, &conv.FarmerEmail, &conv.LastMessageAt, &conv.CreatedAt,
			&msgID, &senderRole, &senderMail, &content, &isRead, &msgCreated,
		); err != nil {
			return nil, err
		}
		if msgID != nil {
			conv.LastMessage = &chat.Message{
				ID:             *msgID,
				ConversationID: conv.ID,
				Sender:         chat.Participant{Role: chat.Role(*senderRole), Email: *senderMail},
				Content:        *content,
				IsRead:         *isRead,
				CreatedAt:      *msgCreated,
			}
		}
		convs = append(convs, conv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}

func (r *PgChatRepository) messagesFor(ctx context.Context, conversationID string) ([]chat.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, sender_role, sender_email, content, is_read, created_at
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var (
			msg  chat.Message
			role string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Sender.Email, &msg.Content, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Sender.Role = chat.Role(role)
		msg.ConversationID = conversationID
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}
