package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/JCrossman/dats-booking-sub000/config"
	"github.com/JCrossman/dats-booking-sub000/database/sessionstore"
	"github.com/JCrossman/dats-booking-sub000/handlers"
	"github.com/JCrossman/dats-booking-sub000/middleware"
	"github.com/JCrossman/dats-booking-sub000/routes"
	"github.com/JCrossman/dats-booking-sub000/services/auth"
	"github.com/JCrossman/dats-booking-sub000/services/booking"
	"github.com/JCrossman/dats-booking-sub000/services/crypto"
	"github.com/JCrossman/dats-booking-sub000/services/soap"
	"github.com/JCrossman/dats-booking-sub000/services/trips"
	"github.com/JCrossman/dats-booking-sub000/services/validation"
	"github.com/JCrossman/dats-booking-sub000/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()

	key := sessionKey(logger)
	store := buildSessionStore(cfg, key, logger)

	validator, err := validation.New(cfg.Timezone, validation.Policy{
		MaxAdvanceDays: cfg.MaxAdvanceDays,
		NoticeHours:    cfg.NoticeHours,
		CutoffHour:     cfg.CutoffHour,
	})
	if err != nil {
		logger.Sugar().Fatalf("main: invalid timezone configuration: %v", err)
	}

	factory := soap.NewFactory(soap.Config{
		BaseURL:     cfg.RemoteBaseURL,
		Timeout:     time.Duration(cfg.RemoteTimeoutSecs) * time.Second,
		MaxAttempts: uint(cfg.RemoteMaxAttempts),
		MinDelay:    time.Duration(cfg.RemoteMinDelayMillis) * time.Millisecond,
	}, logger)

	tripCache := buildTripCache(cfg, logger)

	authService := &auth.Service{
		Factory:    factory,
		Store:      store,
		SessionTTL: time.Duration(cfg.SessionTTLHours) * time.Hour,
		Logger:     logger,
	}
	tripsService := &trips.Service{
		Auth:   authService,
		Cache:  tripCache,
		Logger: logger,
	}
	orchestrator := &booking.Orchestrator{
		Auth:      authService,
		Validator: validator,
		Cache:     tripCache,
		Logger:    logger,
	}

	api := handlers.NewAPI(authService, tripsService, orchestrator, validator, logger)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, api)

	port := cfg.AppPort
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

// sessionKey derives the session encryption key from the operator secret, or
// generates an ephemeral one on first run without a secret. Ephemeral keys
// make stored sessions unreadable after a restart, so the gap is loud.
func sessionKey(logger *zap.Logger) []byte {
	cfg := config.AppConfig
	if cfg.SessionSecret != "" {
		return crypto.DeriveKey([]byte(cfg.SessionSecret), []byte(cfg.SessionKeySalt))
	}

	logger.Warn("SESSION_SECRET is not set; using an ephemeral key, stored sessions will not survive a restart")
	key, err := crypto.GenerateKey()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to generate session key: %v", err)
	}
	return key
}

func buildSessionStore(cfg config.Config, key []byte, logger *zap.Logger) sessionstore.Store {
	switch cfg.SessionStore {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logger.Sugar().Fatalf("main: failed to connect to MongoDB: %v", err)
		}
		store, err := sessionstore.NewMongoStore(ctx, client,
			cfg.MongoDatabase, cfg.MongoCollection, key,
			time.Duration(cfg.SessionTTLHours)*time.Hour)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Mongo session store: %v", err)
		}
		return store
	default:
		return sessionstore.NewFileStore(cfg.SessionFilePath, key)
	}
}

func buildTripCache(cfg config.Config, logger *zap.Logger) *trips.Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("Redis unreachable, trip caching disabled", zap.Error(err))
		return nil
	}
	return trips.NewCache(client, time.Minute)
}
