package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheAdapter "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/cache/adapter"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/database"
	queueAdapter "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/queue/adapter"
	qport "github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/queue/port"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/infrastructure/realtime"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/task"
	profileAdapter "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/adapter"
	profile "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"

	v1 "github.com/priymavani/FarmTrust-x-Hackathon/cmd/api/router/v1"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Profile directory, cached behind redis when available
	var profiles profile.Directory = profileAdapter.NewPgProfileDirectory(pool)
	if cache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: profile name cache disabled: %v", err)
	} else {
		defer cache.Close()
		profiles = profileAdapter.NewCachedProfileDirectory(profiles, cache)
	}

	// Queue client + worker for the HTTP send path; optional like the cache
	var queueClient qport.Client
	if client, err := queueAdapter.NewAsynqClientFromEnv(); err != nil {
		log.Printf("Warning: queued sending disabled: %v", err)
	} else {
		defer client.Close()
		queueClient = client
	}

	workerCtx, stopWorker := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopWorker()
	if queueClient != nil {
		srv, err := queueAdapter.NewAsynqServer()
		if err != nil {
			log.Fatalf("failed to start queue worker: %v", err)
		}
		task.RegisterSendMessageTask(srv, pool)
		go func() {
			if err := srv.Run(workerCtx); err != nil {
				log.Printf("queue worker stopped: %v", err)
			}
		}()
	}

	// One realtime router per process, injected into the socket handler
	rtRouter := realtime.NewRouter()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, queueClient, rtRouter, profiles)

	addr := ""
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	// Start HTTP server (blocks until shutdown)
	if addr != "" {
		err = r.Run(addr)
	} else {
		err = r.Run()
	}
	if err != nil {
		log.Fatalf("http server stopped: %v", err)
	}
}
