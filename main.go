package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serviq/config"
	"serviq/database"
	bookingRepoPkg "serviq/database/repository/booking"
	boostRepoPkg "serviq/database/repository/boost"
	workerRepoPkg "serviq/database/repository/worker"
	"serviq/handlers"
	"serviq/middleware"
	"serviq/routes"
	"serviq/services/audit"
	"serviq/services/conversation"
	"serviq/services/dispatch"
	"serviq/services/notification"
	"serviq/services/pricing"
	"serviq/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// Repositories.
	workerRepo := workerRepoPkg.NewMongoWorkerRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	boostRepo := boostRepoPkg.NewMongoBoostRepo()

	// Collaborators.
	notificationSvc := notification.NewDefaultNotificationService(workerRepo, logger)
	auditSvc := audit.NewDefaultAuditService()
	conversationSvc := conversation.NewDefaultConversationService()
	pricingSvc := &pricing.FlatFeePolicy{
		CancellationFlatFee: config.AppConfig.CancellationFlatFee,
		RescheduleFlatFee:   config.AppConfig.RescheduleFlatFee,
	}

	effects := &dispatch.EffectDispatcher{
		Notifier:      notificationSvc,
		Audit:         auditSvc,
		Conversations: conversationSvc,
		Workers:       workerRepo,
		Bookings:      bookingRepo,
		Logger:        logger,
	}

	engine := dispatch.NewEngine(
		workerRepo,
		bookingRepo,
		boostRepo,
		pricingSvc,
		effects,
		logger,
		dispatch.ConfigFromApp(),
	)

	bookingHandler := handlers.NewBookingHandler(engine, bookingRepo, workerRepo, utils.GetCacheClient(), logger)
	workerHandler := handlers.NewWorkerHandler(workerRepo, boostRepo, logger)

	routes.RegisterRoutes(router, bookingHandler, workerHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
