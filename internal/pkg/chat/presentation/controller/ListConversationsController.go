package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/usecase"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/adapter"
	profile "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"
)

// ListConversationsController serves the inbox projection for one role slot
// (one controller per endpoint; mounted once for customers, once for farmers).
type ListConversationsController struct {
	UC   *usecase.ListConversationsUseCase
	Role chat.Role
}

func NewListConversationsController(pool *pgxpool.Pool, profiles profile.Directory, role chat.Role) *ListConversationsController {
	repo := adapter.NewPgChatRepository(pool)
	uc := usecase.NewListConversationsUseCase(repo, profiles)
	return &ListConversationsController{UC: uc, Role: role}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		previews, err := h.UC.Execute(ctx, usecase.ListConversationsInput{Email: email, Role: h.Role})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(previews))
		for _, p := range previews {
			row := gin.H{
				"conversation_id":   p.ConversationID,
				"user_email":        p.UserEmail,
				"farmer_email":      p.FarmerEmail,
				"counterpart_email": p.CounterpartEmail,
				"counterpart_name":  p.CounterpartName,
				"last_message_at":   p.LastMessageAt,
				"created_at":        p.CreatedAt,
			}
			if p.LastMessage != nil {
				row["last_message"] = gin.H{
					"sender_type":  p.LastMessage.Sender.Role,
					"sender_email": p.LastMessage.Sender.Email,
					"content":      p.LastMessage.Content,
					"is_read":      p.LastMessage.IsRead,
					"created_at":   p.LastMessage.CreatedAt,
				}
			}
			out = append(out, row)
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": out,
			"count":         len(out),
		})
	}
}
