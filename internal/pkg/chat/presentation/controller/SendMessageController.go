package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	queueport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/queue/port"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/task"
)

// SendMessageController handles the HTTP send endpoint by enqueueing a
// background task (one controller per endpoint). This path persists without
// broadcasting; it exists for clients without a live socket, which refetch
// history after sending.
type SendMessageController struct {
	Q queueport.Client
}

func NewSendMessageController(client queueport.Client) *SendMessageController {
	return &SendMessageController{Q: client}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	SenderType    string `json:"sender_type" binding:"required"`
	SenderEmail   string `json:"sender_email" binding:"required"`
	ReceiverType  string `json:"receiver_type" binding:"required"`
	ReceiverEmail string `json:"receiver_email" binding:"required"`
	Content       string `json:"content" binding:"required"`
}

// Handle returns a gin handler that enqueues a background task to send a message
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Q == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queued sending is not configured"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		payload := task.SendMessageTaskPayload{
			SenderType:    req.SenderType,
			SenderEmail:   req.SenderEmail,
			ReceiverType:  req.ReceiverType,
			ReceiverEmail: req.ReceiverEmail,
			Content:       req.Content,
		}
		b, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		// Enqueue task; best-effort options
		opts := queueport.EnqueueOption{Queue: "chat", MaxRetry: 20}
		id, err := h.Q.Enqueue(ctx, queueport.Task{Type: task.SendMessageTaskType, Payload: b}, opts)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue message"})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":       "queued",
			"task_id":      id,
			"sender_email": req.SenderEmail,
		})
	}
}
