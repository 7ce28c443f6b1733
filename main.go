package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"broadcast-service/internal/auth"
	"broadcast-service/internal/db"
	"broadcast-service/internal/handlers"
	"broadcast-service/internal/middleware"
	"broadcast-service/internal/observability"
	"broadcast-service/internal/rabbitmq"
	"broadcast-service/internal/repositories"
	"broadcast-service/internal/telemetry"
	"broadcast-service/internal/ws"
)

const serviceName = "broadcast-service"

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), serviceName, getEnv("OTLP_GRPC_ADDR", ""))
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	amqpURL := getEnv("AMQP_URL", "")
	exchange := getEnv("AUDIT_EXCHANGE", "broadcast.events")

	publisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))
	audit := telemetry.NewAuditEmitter(publisher, "audit.broadcast", serviceName, getEnv("ENVIRONMENT", "dev"))

	if amqpURL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(amqpURL, exchange)
		if err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "240"))
	if err != nil {
		log.Fatalf("invalid JWT_TTL_HOURS: %v", err)
	}
	tokens := auth.NewTokenManager(getEnv("JWT_SECRET", "dev-secret"), time.Duration(ttlHours)*time.Hour)

	userRepo := repositories.NewUserRepo(database)
	profileRepo := repositories.NewProfileRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	qrcodeRepo := repositories.NewQRCodeRepo(database)

	hub := ws.NewHub()

	baseURL := getEnv("PUBLIC_BASE_URL", "http://localhost:8083")
	authHandler := handlers.NewAuthHandler(userRepo, tokens, audit)
	profileHandler := handlers.NewProfileHandler(profileRepo, userRepo)
	messageHandler := handlers.NewMessageHandler(messageRepo, hub, audit)
	publicHandler := handlers.NewPublicHandler(profileRepo, userRepo, messageRepo)
	qrcodeHandler := handlers.NewQRCodeHandler(qrcodeRepo, profileRepo, baseURL, audit)
	statusWS := ws.NewStatusWebSocketHandler(hub, profileRepo)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)

	router.GET("/profile", authMiddleware, profileHandler.GetProfile)
	router.PUT("/profile", authMiddleware, profileHandler.UpdateProfile)

	router.GET("/messages", authMiddleware, messageHandler.ListMessages)
	router.POST("/messages", authMiddleware, messageHandler.AddMessage)
	router.PUT("/messages/:message_id", authMiddleware, messageHandler.UpdateMessage)
	router.POST("/messages/:message_id/toggle", authMiddleware, messageHandler.ToggleMessage)
	router.DELETE("/messages/:message_id", authMiddleware, messageHandler.DeleteMessage)

	router.POST("/qrcode", authMiddleware, qrcodeHandler.Generate)
	router.GET("/qrcode", authMiddleware, qrcodeHandler.Download)

	// public reader side, addressed by slug
	router.GET("/u/:slug", publicHandler.GetStatus)
	router.GET("/ws/status/:slug", statusWS.Handle)

	handlers.RegisterDebugRoutes(router, audit, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
