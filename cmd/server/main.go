// @title           Flumers Marketplace API
// @version         1.0.0
// @description     Backend API for the Flumers influencer marketplace: role-based onboarding, influencer discovery, the order collaboration workflow (creation, start, submissions, revisions, completion), direct messaging, and the support chatbot relay.

// @contact.name   API Support
// @contact.email  support@flumers.ai

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"flumers-backend/internal/chat"
	"flumers-backend/internal/config"
	"flumers-backend/internal/database"
	"flumers-backend/internal/gateway"
	"flumers-backend/internal/handlers"
	"flumers-backend/internal/middleware"
	"flumers-backend/internal/orders"
	"flumers-backend/internal/profiles"
	"flumers-backend/internal/supabase"
	"flumers-backend/internal/support"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Optional Redis client for cross-instance fan-out of change events.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.WithError(err).Warn("redis unreachable, falling back to in-process events only")
			redisClient = nil
		}
	}
	hub := gateway.NewHub(redisClient)

	// Document store: Postgres when configured, in-memory otherwise so the
	// API stays usable in local development.
	var store gateway.DocumentStore
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to database")
		}
		defer migrator.Close()
		if err := migrator.Run(); err != nil {
			logrus.WithError(err).Fatal("migration failed")
		}
		logrus.Info("migrations completed")
		store = gateway.NewPostgresStore(migrator.DB(), hub)
	} else {
		logrus.Warn("DATABASE_URL not set, using in-memory document store")
		store = gateway.NewMemoryStore(hub)
	}

	if redisClient != nil {
		ctx, cancelRelay := context.WithCancel(context.Background())
		defer cancelRelay()
		go hub.RunRedisRelay(ctx, orders.Collection, chat.Collection)
	}

	// Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize Supabase client")
	}
	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize storage client")
	}
	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Services
	orderService := orders.NewService(store)
	chatService := chat.NewService(store)
	profileService := profiles.NewService(store)
	botClient := support.NewClient(cfg.SupportBotURL, cfg.SupportBotKey)
	supportService := support.NewService(store, botClient)

	// Handlers
	ordersHandler := handlers.NewOrdersHandler(orderService, storageClient, realtimeClient)
	submissionsHandler := handlers.NewSubmissionsHandler(orderService, storageClient, realtimeClient)
	chatHandler := handlers.NewChatHandler(chatService, realtimeClient)
	profilesHandler := handlers.NewProfilesHandler(profileService, storageClient)
	supportHandler := handlers.NewSupportHandler(supportService)

	// Setup router
	router := gin.Default()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))

	// Profiles and discovery
	api.POST("/profiles", profilesHandler.Onboard)
	api.GET("/profiles/me", profilesHandler.GetMe)
	api.PATCH("/profiles/me", profilesHandler.UpdateProfile)
	api.POST("/profiles/me/avatar", profilesHandler.UploadAvatar)
	api.GET("/profiles/:uid", profilesHandler.GetProfile)
	api.GET("/influencers", profilesHandler.Discover)

	// Orders
	api.POST("/orders", ordersHandler.CreateOrder)
	api.GET("/orders", ordersHandler.ListOrders)
	api.POST("/orders/brief", ordersHandler.UploadBrief)
	api.GET("/orders/:order_id", ordersHandler.GetOrder)
	api.POST("/orders/:order_id/start", ordersHandler.StartOrder)
	api.POST("/orders/:order_id/complete", ordersHandler.CompleteOrder)

	// Submissions and revisions
	api.POST("/orders/:order_id/submissions", submissionsHandler.UploadSubmissions)
	api.GET("/orders/:order_id/submissions", submissionsHandler.ListSubmissions)
	api.POST("/orders/:order_id/revisions", submissionsHandler.AppendRevision)
	api.GET("/orders/:order_id/revisions", submissionsHandler.ListRevisions)

	// Chat
	api.POST("/chats/:peer_uid/messages", chatHandler.SendMessage)
	api.GET("/chats/:peer_uid/messages", chatHandler.ListMessages)
	api.GET("/chats/:peer_uid/unread", chatHandler.UnreadCount)
	api.GET("/chats/:peer_uid/stream", chatHandler.StreamMessages)

	// Support chatbot
	api.POST("/support/messages", supportHandler.Ask)
	api.GET("/support/messages", supportHandler.History)

	logrus.WithField("port", cfg.Port).Info("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}
