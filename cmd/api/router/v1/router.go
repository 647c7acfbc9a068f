package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/queue/port"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/realtime"
	httpHandler "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/presentation/http"
	profile "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, client qport.Client, router *realtime.Router, profiles profile.Directory) {
	v1 := r.Group("/api/v1")
	// Pass the DB connection, queue client and realtime router down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, client, router, profiles)
}
