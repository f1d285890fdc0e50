package main

import (
	stdctx "context"
	"fmt"
	"log"
	"net/http"
	"time"

	"vibelink/internal/config"
	"vibelink/internal/database"
	"vibelink/internal/engine"
	"vibelink/internal/handlers"
	"vibelink/internal/middleware"
	"vibelink/internal/realtime"
	"vibelink/internal/storage"
	"vibelink/internal/utils"
	"vibelink/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	// Initialize components
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.SetJWTSecret(cfg.JWTSecret)

	metrics := utils.NewMetricsCollector()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 5*time.Second)
		defer cancel()
		mongodb.Close(ctx)
	}()

	if err := mongodb.EnsureIndexes(stdctx.Background()); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Object storage for avatars and cover images
	diskStorage, err := storage.NewDiskStorage(cfg.StorageDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Realtime change feed shared by the domain and session actors
	changeFeed := realtime.NewHub()
	go changeFeed.Run()
	defer changeFeed.Close()

	// WebSocket hub for client connections
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Initialize actor system
	system := actor.NewActorSystem()

	// Initialize engine with actors
	appEngine := engine.NewEngine(system, mongodb, changeFeed, metrics)

	// Create server instance
	server := handlers.NewServer(system, appEngine, metrics, mongodb, wsHub, diskStorage)

	// Set up HTTP handlers
	mux := http.NewServeMux()
	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	route := func(path string, handler http.HandlerFunc) {
		mux.HandleFunc(path, middleware.ApplyCORS(middleware.ApplyJWTMiddleware(handler, path), corsConfig))
	}

	route("/health", server.HandleHealth())
	route("/user/register", server.HandleUserRegistration())
	route("/user/login", server.HandleUserLogin())
	route("/user/profile", server.HandleUserProfile())
	route("/user/search", server.HandleUserSearch())
	route("/user/avatar", server.HandleAvatarUpload())
	route("/matches", server.HandleGetMatches())
	route("/friend-requests", server.HandleGetFriendRequests())
	route("/friend-requests/send", server.HandleSendFriendRequest())
	route("/friend-requests/respond", server.HandleRespondFriendRequest())
	route("/friend-requests/cancel", server.HandleCancelFriendRequest())
	route("/comments", server.HandleGetCommentThread())
	route("/comments/create", server.HandleCreateComment())
	route("/comments/delete", server.HandleDeleteComment())
	route("/comments/like", server.HandleToggleCommentLike())
	route("/chat/messages", server.HandleGetChatMessages())
	route("/chat/send", server.HandleSendChatMessage())
	route("/chat/read", server.HandleMarkMessageRead())

	// WebSocket authenticates via token query parameter, not the JWT header
	// middleware.
	mux.HandleFunc("/ws", server.HandleWebSocket())

	// Serve uploaded objects
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(diskStorage.Dir()))))

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, mux); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
