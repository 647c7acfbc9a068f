package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/realtime"
	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/port"
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic: join/leave of pair rooms and message sends with persistence
// before fan-out.
type ChatSocketController struct {
	router          *realtime.Router
	sendMessageUC   *usecase.SendMessageUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(pool *pgxpool.Pool, router *realtime.Router) *ChatSocketController {
	repo := repoAdapter.NewPgChatRepository(pool)
	return NewChatSocketControllerWithRepo(repo, router)
}

// NewChatSocketControllerWithRepo wires the controller against any repository
// implementation.
func NewChatSocketControllerWithRepo(repo repository.ChatRepository, router *realtime.Router) *ChatSocketController {
	return &ChatSocketController{
		router:          router,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type          string `json:"type"`
	UserEmail     string `json:"user_email,omitempty"`
	FarmerEmail   string `json:"farmer_email,omitempty"`
	SenderType    string `json:"sender_type,omitempty"`
	SenderEmail   string `json:"sender_email,omitempty"`
	ReceiverType  string `json:"receiver_type,omitempty"`
	ReceiverEmail string `json:"receiver_email,omitempty"`
	Content       string `json:"content,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	SessionID      string `json:"session_id,omitempty"`
	Room           string `json:"room,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type outboundMessage struct {
	Type    string         `json:"type"`
	Room    string         `json:"room"`
	Message messagePayload `json:"message"`
}

type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderType     string    `json:"sender_type"`
	SenderEmail    string    `json:"sender_email"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(ws)
		ctl.router.Attach(conn)
		conn.Start()
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		handshake := ackFrame{Type: "connected", SessionID: conn.ID()}
		if payload, err := json.Marshal(handshake); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "message":
				ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
				ctl.handleMessage(ctx, conn, frame)
				cancel()
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// handleJoin registers the session in the pair room. Rooms are addressed by
// the normalized pair, not by conversation id, so a client may join before
// any message (and thus any conversation record) exists.
func (ctl *ChatSocketController) handleJoin(sub realtime.Subscriber, frame inboundFrame) {
	if frame.UserEmail == "" || frame.FarmerEmail == "" {
		ctl.replyError(sub, "bad_request", "user_email and farmer_email are required")
		return
	}

	room := chat.RoomKey(frame.UserEmail, frame.FarmerEmail)
	ctl.router.Join(room, sub)

	ack := ackFrame{Type: "joined", Room: room}
	if payload, err := json.Marshal(ack); err == nil {
		_ = sub.Send(payload)
	}
}

func (ctl *ChatSocketController) handleLeave(sub realtime.Subscriber, frame inboundFrame) {
	if frame.UserEmail == "" || frame.FarmerEmail == "" {
		ctl.replyError(sub, "bad_request", "user_email and farmer_email are required")
		return
	}

	room := chat.RoomKey(frame.UserEmail, frame.FarmerEmail)
	ctl.router.Leave(room, sub)

	ack := ackFrame{Type: "left", Room: room}
	if payload, err := json.Marshal(ack); err == nil {
		_ = sub.Send(payload)
	}
}

// handleMessage persists first and broadcasts only after the append has
// committed; a persistence failure is reported to the sender alone and
// nothing reaches the room.
func (ctl *ChatSocketController) handleMessage(ctx context.Context, sub realtime.Subscriber, frame inboundFrame) {
	result, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		SenderType:    frame.SenderType,
		SenderEmail:   frame.SenderEmail,
		ReceiverType:  frame.ReceiverType,
		ReceiverEmail: frame.ReceiverEmail,
		Content:       frame.Content,
	})
	if err != nil {
		ctl.handleUseCaseError(sub, err)
		return
	}

	out := outboundMessage{
		Type:    "message",
		Room:    result.Room,
		Message: toPayload(result.Message),
	}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(sub, "internal_error", "failed to encode message")
		return
	}

	ctl.router.Broadcast(result.Room, payload)

	ack := ackFrame{Type: "sent", Room: result.Room, ConversationID: result.Message.ConversationID}
	if ackPayload, err := json.Marshal(ack); err == nil {
		_ = sub.Send(ackPayload)
	}
}

func (ctl *ChatSocketController) handleUseCaseError(sub realtime.Subscriber, err error) {
	if errors.Is(err, usecase.ErrPersistence) {
		ctl.replyError(sub, "internal_error", err.Error())
		return
	}
	// Everything else the use case rejects is a malformed request.
	ctl.replyError(sub, "bad_request", err.Error())
}

func (ctl *ChatSocketController) replyError(sub realtime.Subscriber, code string, message string) {
	frame := errorFrame{
		Type:  "error",
		Code:  code,
		Error: message,
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = sub.Send(payload)
	}
}

func toPayload(msg chat.Message) messagePayload {
	return messagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderType:     string(msg.Sender.Role),
		SenderEmail:    msg.Sender.Email,
		Content:        msg.Content,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
	}
}
