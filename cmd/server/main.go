package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kanzaki/taskproof/internal/config"
	"github.com/kanzaki/taskproof/internal/database"
	"github.com/kanzaki/taskproof/internal/handlers"
	"github.com/kanzaki/taskproof/internal/logger"
	"github.com/kanzaki/taskproof/internal/middleware"
	"github.com/kanzaki/taskproof/internal/notify"
	"github.com/kanzaki/taskproof/internal/repository"
	"github.com/kanzaki/taskproof/internal/services"
	"github.com/kanzaki/taskproof/internal/storage"
	"github.com/kanzaki/taskproof/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.Init()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	sink, err := storage.NewDiskSink(cfg.UploadDir)
	if err != nil {
		zapLogger.Fatal("Failed to initialize artifact storage", zap.Error(err))
	}

	var notifier notify.Notifier
	if cfg.NotifierConfigured() {
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		zapLogger.Info("SMTP not configured, notifications will only be logged")
		notifier = notify.NewLogNotifier(zapLogger)
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret)

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, tokens)
	taskService := services.NewTaskService(taskRepo, userRepo, sink, notifier, zapLogger)
	userService := services.NewUserService(userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sink)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zapLogger))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "taskproof API is running",
		})
	})

	// Auth routes (public)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// Protected routes
	protected := r.Group("")
	protected.Use(middleware.RequireAuth(tokens))
	{
		tasks := protected.Group("/tasks")
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListCreated)
			tasks.GET("/validate", taskHandler.ListAssigned)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/proof", taskHandler.SubmitProof)
			tasks.GET("/:id/proof", taskHandler.FetchProof)
			tasks.POST("/:id/validate", taskHandler.Validate)
		}

		protected.GET("/user", userHandler.GetProfile)
		protected.GET("/leaderboard", userHandler.Leaderboard)
	}

	// Start server
	zapLogger.Info("Server starting", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
