package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hotel-reservation/config"
	"hotel-reservation/controllers"
	"hotel-reservation/events"
	"hotel-reservation/locks"
	"hotel-reservation/routes"
	"hotel-reservation/services"
)

func newLogger(env string) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if env == "prod" || env == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return log
}

func main() {
	// Load .env (optional)
	envErr := godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Info(".env not found; continuing with environment variables")
	}
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDatabase(cfg.DB, log)
	if err != nil {
		log.Fatal("database connect failed", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	log.Info("database connection established and migrations applied", zap.String("driver", cfg.DB.Driver))

	if cfg.SeedSampleRooms {
		if err := config.SeedDatabase(db, log); err != nil {
			log.Fatal("seed failed", zap.Error(err))
		}
	}

	var locker locks.Locker = locks.NewLocalLocker()
	redisClient, err := config.NewRedisClient(cfg.Redis)
	switch {
	case err != nil:
		log.Warn("redis unavailable, using in-process room locks", zap.Error(err))
	case redisClient != nil:
		locker = locks.NewRedisLocker(redisClient, cfg.Redis.Prefix, cfg.LockTTL, cfg.LockWait, log.Named("locks"))
		log.Info("using redis room locks", zap.String("addr", cfg.Redis.Addr))
	}

	var publisher events.Publisher = events.NopPublisher{}
	var amqpPublisher *events.AMQPPublisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err = events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled", zap.Error(err))
		} else {
			publisher = amqpPublisher
			log.Info("publishing events", zap.String("exchange", cfg.EventsExchange))
		}
	}

	svc := services.NewReservationService(db, locker, publisher, log.Named("reservations"))

	roomController := controllers.NewRoomController(svc, log)
	bookingController := controllers.NewBookingController(svc, log)

	router := routes.SetupRouter(roomController, bookingController, cfg.CORSOrigins, log.Named("http"))

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if amqpPublisher != nil {
		if err := amqpPublisher.Close(); err != nil {
			log.Warn("close rabbitmq", zap.Error(err))
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("server stopped gracefully")
}
