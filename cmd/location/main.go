package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/config"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/internal/pkg/health"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/nats"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/pkg/server"
	"github.com/piresc/hamroride/services/drivers/geoindex"
	natsHandler "github.com/piresc/hamroride/services/drivers/handler/nats"
	"github.com/piresc/hamroride/services/drivers/repository"
	"github.com/piresc/hamroride/services/drivers/usecase"
)

// The location service ingests driver location reports published on NATS
// and keeps the shared geo index current. It only serves health endpoints.
func main() {
	appName := "location-service"
	configs := config.InitConfig("config/location.env")

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
	)

	// The memory backend would only be visible to this process
	if configs.Drivers.GeoBackend == geoindex.BackendMemory {
		zapLogger.Fatal("location-service needs a shared geo index", logger.String("backend", configs.Drivers.GeoBackend))
	}

	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	natsClient, err := nats.NewClient(configs.NATS.URL, appName)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}

	geoIndex, err := geoindex.New(configs.Drivers.GeoBackend, redisClient)
	if err != nil {
		zapLogger.Fatal("Failed to initialize geo index", logger.Err(err))
	}
	driverUC := usecase.NewDriverUC(configs, repository.NewDriverRepository(postgresClient.GetDB()), geoIndex)

	locationHandler := natsHandler.NewLocationHandler(driverUC, natsClient, nrApp)
	if err := locationHandler.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize location consumers", logger.Err(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())

	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(postgresClient))
	healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server)
	srv.OnShutdown("postgres", func(context.Context) error { return postgresClient.Close() })
	srv.OnShutdown("redis", func(context.Context) error { return redisClient.Close() })
	srv.OnShutdown("nats", func(context.Context) error {
		natsClient.Close()
		return nil
	})
	srv.OnShutdown("location-consumer", func(context.Context) error {
		locationHandler.Close()
		return nil
	})
	if nrApp != nil {
		srv.OnShutdown("newrelic", func(context.Context) error {
			nrApp.Shutdown(10 * time.Second)
			return nil
		})
	}

	if err := srv.Run(); err != nil {
		zapLogger.Error("Server stopped with error", logger.Err(err))
	}
	_ = zapLogger.Sync()
}
