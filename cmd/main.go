package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/auth"
	"github.com/ukydev/fleet-backoffice/internal/config"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/events"
	"github.com/ukydev/fleet-backoffice/internal/handlers"
	"github.com/ukydev/fleet-backoffice/internal/lock"
	"github.com/ukydev/fleet-backoffice/internal/middleware"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/services"
)

const (
	eventTopicPrefix = "fleet"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		config.LogError(logger, "main", "run", nil, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	logger.WithField("database", cfg.MongoDB).Info("connected to MongoDB")

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}

	authService, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}

	users := &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)}
	vehicleTypes := &db.MongoVehicleTypeCollection{Collection: database.Collection(db.VehicleTypesCollection)}
	vehicles := &db.MongoVehicleCollection{Collection: database.Collection(db.VehiclesCollection)}
	drivers := &db.MongoDriverCollection{Collection: database.Collection(db.DriversCollection)}
	tripsheets := &db.MongoTripsheetCollection{Collection: database.Collection(db.TripsheetsCollection)}
	bills := &db.MongoBillCollection{Collection: database.Collection(db.BillsCollection)}
	salaries := &db.MongoSalaryCollection{Collection: database.Collection(db.SalariesCollection)}
	advances := &db.MongoAdvanceCollection{Collection: database.Collection(db.AdvancesCollection)}
	tx := &db.MongoTransactor{Client: client, Enabled: cfg.MongoTransactions}

	if err := seedAdmin(ctx, users, authService, cfg, logger); err != nil {
		return err
	}

	locker := newLocker(ctx, cfg, logger)
	pub := newPublisher(cfg, logger)
	defer pub.Close()

	router := handlers.NewRouter(handlers.Router{
		Auth:       handlers.NewAuthHandler(authService, users, drivers, logger),
		Fleet:      handlers.NewFleetHandler(vehicleTypes, vehicles, drivers, logger),
		Tripsheets: handlers.NewTripsheetHandler(services.NewTripsheetService(tripsheets, vehicles, drivers, pub, logger), logger),
		Billing: handlers.NewBillingHandler(
			services.NewBillingService(tripsheets, bills, vehicles, vehicleTypes, locker, pub, logger, cfg.CompanyName), logger),
		Salary: handlers.NewSalaryHandler(
			services.NewSalaryService(tripsheets, salaries, advances, drivers, vehicles, tx, locker, pub, logger, cfg.CompanyName), logger),
		Advances:       handlers.NewAdvanceHandler(services.NewAdvanceService(advances, drivers, logger), logger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService),
		RateLimiter:    middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Ping:           func(ctx context.Context) error { return client.Ping(ctx, nil) },
		Logger:         logger,
	})

	return serve(ctx, newServer(cfg.Port, router), logger)
}

func newServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// PDF and XLSX exports are rendered inside the request.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger log.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	logger.Info("server exited gracefully")
	return nil
}

// newLocker returns a Redis-backed batch lock, or a no-op lock when Redis
// is not configured or unreachable.
func newLocker(ctx context.Context, cfg config.Config, logger log.FieldLogger) lock.Locker {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, batch locking disabled")
		return lock.NopLocker{}
	}
	rdb, err := lock.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, batch locking disabled")
		return lock.NopLocker{}
	}
	return lock.NewRedisLocker(rdb)
}

// newPublisher returns an MQTT event publisher, or one that drops events
// when no broker is configured or reachable.
func newPublisher(cfg config.Config, logger log.FieldLogger) events.Publisher {
	if cfg.MQTTBroker == "" {
		logger.Info("MQTT_BROKER not set, events disabled")
		return events.NopPublisher{}
	}
	pub, err := events.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, eventTopicPrefix, logger)
	if err != nil {
		logger.WithError(err).Warn("mqtt unavailable, events disabled")
		return events.NopPublisher{}
	}
	return pub
}

// seedAdmin creates the admin account named in the environment unless it
// already exists.
func seedAdmin(ctx context.Context, users db.UserCollection, authService *auth.Service, cfg config.Config, logger log.FieldLogger) error {
	if cfg.AdminPassword == "" {
		return nil
	}
	_, err := users.FindUserByUsername(ctx, cfg.AdminUsername)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("look up admin %s: %w", cfg.AdminUsername, err)
	}

	hash, err := authService.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := &models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminUsername + "@localhost",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	err = users.InsertUser(ctx, admin)
	switch {
	case errors.Is(err, db.ErrDuplicate):
		return nil
	case err != nil:
		return fmt.Errorf("seed admin %s: %w", cfg.AdminUsername, err)
	}
	logger.WithField("username", cfg.AdminUsername).Info("admin account seeded")
	return nil
}
