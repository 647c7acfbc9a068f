package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/queue/port"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/realtime"
	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/presentation/controller"
	profile "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, client qport.Client, router *realtime.Router, profiles profile.Directory) {
	historyCtl := controller.NewGetHistoryController(pool)
	customerInboxCtl := controller.NewListConversationsController(pool, profiles, chat.RoleCustomer)
	farmerInboxCtl := controller.NewListConversationsController(pool, profiles, chat.RoleFarmer)
	sendMsgCtl := controller.NewSendMessageController(client)
	socketCtl := controller.NewChatSocketController(pool, router)

	// GET /api/v1/chat/history/:userEmail/:farmerEmail -> ordered message list for a pair
	g.GET("/chat/history/:userEmail/:farmerEmail", historyCtl.Handle())

	// GET /api/v1/chat/conversations/customer/:email -> customer inbox
	g.GET("/chat/conversations/customer/:email", customerInboxCtl.Handle())

	// GET /api/v1/chat/conversations/farmer/:email -> farmer inbox
	g.GET("/chat/conversations/farmer/:email", farmerInboxCtl.Handle())

	// POST /api/v1/chat/messages -> queued send for clients without a socket
	g.POST("/chat/messages", sendMsgCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())
}
