package main

import (
	"messaging-service/internal/carrier"
	"messaging-service/internal/consent"
	"messaging-service/internal/handler"
	"messaging-service/internal/messaging"
	"messaging-service/internal/middleware"
	"messaging-service/internal/notify"
	"messaging-service/internal/scheduler"
	"messaging-service/internal/store"
	"messaging-service/internal/tasks"
	"messaging-service/pkg/config"
	"messaging-service/pkg/database"
	"messaging-service/pkg/jwtutil"
	"messaging-service/pkg/logger"
	"messaging-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting messaging service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.Initialize(cfg.DB.GetDSN(), cfg.DB.MaxIdleConns, cfg.DB.MaxOpenConns, cfg.DB.LogLevel); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	db := database.GetDB()
	log.Info("Database connection established")

	// Initialize JWT utility for the operator API
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Redis for real-time events and reminder markers
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	notifier := notify.NewRedisNotifier(redisClient)

	// Wire the messaging core
	ledger := consent.NewLedger(db)
	customers := store.NewCustomerStore(db, ledger)
	tenants := store.NewTenantStore(db)
	messages := store.NewMessageStore(db)
	appointments := store.NewAppointmentStore(db)
	senderNumbers := store.NewSenderNumberStore(db)

	carrierClient := carrier.NewClient(cfg.Carrier.AccountSID, cfg.Carrier.AuthToken, cfg.Carrier.BaseURL, cfg.Carrier.Timeout)
	signatureValidator := carrier.NewSignatureValidator(cfg.Carrier.AuthToken)

	executor := tasks.NewExecutor(4, 256, log)
	defer executor.Stop()

	sender := messaging.NewSender(customers, tenants, senderNumbers, messages, carrierClient, notifier, executor, cfg.Carrier.FromNumber, log)

	// Start the reminder scanner
	cronRunner := cron.New()
	scanner := scheduler.NewScanner(appointments, sender, redisClient, cfg.Reminder.MarkerTTL, log)
	if err := scanner.Register(cronRunner, cfg.Reminder.CronSpec); err != nil {
		log.Fatal("Failed to register reminder scanner", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()
	log.Info("Reminder scanner scheduled", zap.String("cron", cfg.Reminder.CronSpec))

	webhooks := handler.NewWebhookHandler(customers, tenants, messages, ledger, sender, notifier)
	messagesAPI := handler.NewMessageHandler(customers, messages, ledger, sender)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Carrier webhooks - signature-verified, no tenant context until the
	// customer is resolved
	webhookGroup := e.Group("/webhooks/sms")
	webhookGroup.Use(middleware.CarrierSignatureMiddleware(signatureValidator))
	webhookGroup.POST("/inbound", webhooks.Inbound)
	webhookGroup.POST("/status", webhooks.StatusCallback)

	// Operator API - all routes require authentication and a tenant context
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.Use(middleware.RequireTenantContext)
	api.GET("/customers/:id/messages", messagesAPI.ListMessages)
	api.GET("/customers/:id/consent-logs", messagesAPI.ListConsentLogs)
	api.POST("/messages", messagesAPI.Compose)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
