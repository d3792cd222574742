package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/hochschulassistent/backend/internal/api/handlers"
	"github.com/hochschulassistent/backend/internal/auth"
	"github.com/hochschulassistent/backend/internal/config"
	"github.com/hochschulassistent/backend/internal/database"
	"github.com/hochschulassistent/backend/internal/health"
	"github.com/hochschulassistent/backend/internal/middleware"
	"github.com/hochschulassistent/backend/internal/migration"
	"github.com/hochschulassistent/backend/internal/openai"
	"github.com/hochschulassistent/backend/internal/repository"
	"github.com/hochschulassistent/backend/internal/services"
	"github.com/hochschulassistent/backend/pkg/utils"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)
	logger := utils.GetLogger()

	// Missing backend credentials abort startup instead of failing
	// per-request.
	if err := cfg.ValidateOpenAI(); err != nil {
		logger.WithError(err).Fatal("OpenAI configuration validation failed")
	}
	if err := cfg.ValidateAuth(); err != nil {
		logger.WithError(err).Fatal("Auth configuration validation failed")
	}

	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.LogLevel,
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := migration.NewRunner(dbManager, logger).RunMigrations("migrations"); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	openaiClient := openai.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Organization, logger)
	gateway := openai.NewService(openaiClient, cfg.OpenAI.Model, logger)

	gate := auth.NewGate(cfg.Auth.PasswordRequired, cfg.Auth.AuthorizedPasswords)

	chatService := services.NewChatService(repoManager, gateway, cache, cfg.Assistant.Enabled, logger)

	chatHandler := handlers.NewChatHandler(chatService, gate, logger)
	reportHandler := handlers.NewReportHandler(chatService, logger)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(dbManager, logger, cfg.OpenAI.BaseURL), logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))

	router.GET("/session", chatHandler.HandleSession)
	router.GET("/ask", middleware.AccessGate(gate, logger), chatHandler.HandleAsk)
	router.GET("/feedback", chatHandler.HandleFeedback)
	router.GET("/set-password-required", chatHandler.HandleGateStatus)
	router.GET("/conversations", reportHandler.HandleConversations)
	router.GET("/sql", reportHandler.HandleReport)
	router.GET("/health", healthHandler.HandleHealth)

	logger.WithField("port", cfg.Server.Port).Info("Server läuft")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server terminated")
	}
}
