package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"bicochat/internal/config"
	"bicochat/internal/handlers"
	"bicochat/internal/realtime"
	"bicochat/internal/routes"
	"bicochat/internal/services"
	"bicochat/internal/store"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "bicochat/docs"
)

func Run() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	logger, err := newLogger(cfg.Log.Dev)
	if err != nil {
		log.Fatal("logger init: ", err)
	}
	defer logger.Sync()

	// === Firebase ===
	credentials := serviceAccountJSON(cfg.Firebase)
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   cfg.Firebase.ProjectID,
		DatabaseURL: cfg.Firebase.DatabaseURL,
	}, option.WithCredentialsJSON(credentials))
	if err != nil {
		logger.Fatal("firebase init", zap.Error(err))
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.Fatal("firebase auth init", zap.Error(err))
	}

	// === Store ===
	var st store.Store
	switch cfg.Store.Backend {
	case "memory":
		logger.Warn("using in-memory store, nothing will be persisted")
		st = store.NewMemoryStore()
	default:
		st, err = store.NewFirebaseStore(ctx, app, credentials, cfg.Firebase.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("store init", zap.Error(err))
		}
	}

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	userService := services.NewUserService(st, logger)
	chatService := services.NewChatService(st, userService, logger)
	messageService := services.NewMessageService(st, chatService, logger)
	friendService := services.NewFriendService(st, logger)
	authService := services.NewAuthService(
		services.NewFirebaseIdentity(authClient),
		emailService,
		cfg.Firebase.WebAPIKey,
		logger,
	)

	// === Realtime ===
	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	bridge := realtime.NewBridge(st, chatService, userService, messageService, hub, logger)
	if err := bridge.Start(ctx); err != nil {
		logger.Fatal("change-notification bridge", zap.Error(err))
	}

	// === Handlers ===
	chatHandler := handlers.NewChatHandler(chatService)
	messageHandler := handlers.NewMessageHandler(messageService)
	userHandler := handlers.NewUserHandler(userService, hub)
	friendHandler := handlers.NewFriendHandler(friendService)
	authHandler := handlers.NewAuthHandler(authService)
	wsHandler := handlers.NewWSHandler(hub, logger)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		chatHandler,
		messageHandler,
		userHandler,
		friendHandler,
		authHandler,
		wsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", listenAddr))
	if err := router.Run(listenAddr); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// serviceAccountJSON assembles the provider's credentials file from the
// individual environment-sourced fields.
func serviceAccountJSON(fc config.FirebaseConfig) []byte {
	credentials := map[string]string{
		"type":                        "service_account",
		"project_id":                  fc.ProjectID,
		"private_key_id":              fc.PrivateKeyID,
		"private_key":                 strings.ReplaceAll(fc.PrivateKey, `\n`, "\n"),
		"client_email":                fc.ClientEmail,
		"client_id":                   fc.ClientID,
		"auth_uri":                    fc.AuthURI,
		"token_uri":                   fc.TokenURI,
		"auth_provider_x509_cert_url": fc.AuthProviderCertURL,
		"client_x509_cert_url":        fc.ClientCertURL,
		"universe_domain":             "googleapis.com",
	}
	raw, err := json.Marshal(credentials)
	if err != nil {
		panic(err) // static map, cannot fail
	}
	return raw
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
