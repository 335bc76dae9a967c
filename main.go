package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mapcanvas/atlas/api/audit"
	"github.com/mapcanvas/atlas/api/auth"
	"github.com/mapcanvas/atlas/api/cache"
	"github.com/mapcanvas/atlas/api/config"
	"github.com/mapcanvas/atlas/api/controller"
	"github.com/mapcanvas/atlas/api/db"
	logger "github.com/mapcanvas/atlas/api/logging"
	"github.com/mapcanvas/atlas/api/model"
	"github.com/mapcanvas/atlas/api/router"
	"github.com/mapcanvas/atlas/api/service"
	"github.com/mapcanvas/atlas/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.file"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Response cache engine; every storage mutation published on the bus
	// invalidates the views it can have made stale.
	store := cache.NewRedisStore(db.RedisClient)
	engine := cache.NewEngine(store, config.GetDuration("cache.responseTTL"))
	engine.Register(eventBus, model.MutationEvents...)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService()
	notificationService := util.NewNotificationService(config.GetDuration("webhook.timeout"))
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	services, err := service.InitializeServices(
		db.Neo4jDriver,
		auditService,
		validationUtil,
		cacheService,
		notificationService,
		eventBus,
	)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	// Authentication: subjects resolve leniently from basic credentials,
	// bearer tokens, or the session cookie; clients resolve strictly from
	// the API key header or the request origin.
	sessions := auth.NewRedisSessionStore(db.RedisClient, services.User, config.GetDuration("auth.sessionTTL"))
	resolver := auth.NewResolver(
		[]auth.SubjectAuthenticator{
			&auth.BasicAuthenticator{Users: services.User},
			&auth.TokenAuthenticator{Secret: []byte(config.GetString("auth.jwt.secret"))},
			&auth.SessionAuthenticator{Sessions: sessions},
		},
		[]auth.ClientAuthenticator{
			&auth.APIKeyAuthenticator{},
			&auth.OriginAuthenticator{},
		},
	)
	verifier := auth.NewVerifier(engine.Instances())

	// Initialize controllers
	controllers := controller.InitializeControllers(services, verifier, sessions, config.GetDuration("auth.sessionTTL"))

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engineRouter := router.SetupRouter(
		controllers,
		services.DataSet,
		resolver,
		engine,
		100, time.Minute, // 100 requests per minute
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engineRouter,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
