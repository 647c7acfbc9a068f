package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/usecase"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/persistence/repository/adapter"
)

// GetHistoryController serves the full ordered message list for a pair
// (one controller per endpoint). A pair with no conversation yet returns an
// empty list, not a 404: clients query history before first contact.
type GetHistoryController struct {
	UC *usecase.GetHistoryUseCase
}

func NewGetHistoryController(pool *pgxpool.Pool) *GetHistoryController {
	repo := adapter.NewPgChatRepository(pool)
	uc := usecase.NewGetHistoryUseCase(repo)
	return &GetHistoryController{UC: uc}
}

func (h *GetHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userEmail := c.Param("userEmail")
		farmerEmail := c.Param("farmerEmail")
		if userEmail == "" || farmerEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userEmail and farmerEmail are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.GetHistoryInput{
			UserEmail:   userEmail,
			FarmerEmail: farmerEmail,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		msgs := make([]gin.H, 0, len(out.Messages))
		for _, m := range out.Messages {
			msgs = append(msgs, gin.H{
				"id":           m.ID,
				"sender_type":  m.Sender.Role,
				"sender_email": m.Sender.Email,
				"content":      m.Content,
				"is_read":      m.IsRead,
				"created_at":   m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation_id": out.ConversationID,
			"messages":        msgs,
			"count":           len(msgs),
		})
	}
}
