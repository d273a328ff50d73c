package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/hamroride/internal/pkg/config"
	"github.com/piresc/hamroride/internal/pkg/database"
	"github.com/piresc/hamroride/internal/pkg/health"
	"github.com/piresc/hamroride/internal/pkg/lock"
	"github.com/piresc/hamroride/internal/pkg/logger"
	"github.com/piresc/hamroride/internal/pkg/middleware"
	"github.com/piresc/hamroride/internal/pkg/nats"
	nrpkg "github.com/piresc/hamroride/internal/pkg/newrelic"
	"github.com/piresc/hamroride/internal/pkg/server"
	wspkg "github.com/piresc/hamroride/internal/pkg/websocket"
	driversHandler "github.com/piresc/hamroride/services/drivers/handler"
	"github.com/piresc/hamroride/services/drivers/geoindex"
	driversRepo "github.com/piresc/hamroride/services/drivers/repository"
	driversUC "github.com/piresc/hamroride/services/drivers/usecase"
	"github.com/piresc/hamroride/services/realtime"
	realtimeNATS "github.com/piresc/hamroride/services/realtime/handler/nats"
	realtimeWS "github.com/piresc/hamroride/services/realtime/handler/websocket"
	ridesHandler "github.com/piresc/hamroride/services/rides/handler"
	ridesRepo "github.com/piresc/hamroride/services/rides/repository"
	ridesUC "github.com/piresc/hamroride/services/rides/usecase"
)

func main() {
	appName := "rides-service"
	configPath := "config/rides.env"
	configs := config.InitConfig(configPath)

	// Initialize New Relic and Zap logger
	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitZapLoggerFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()

	// Set global logger for application-wide access
	logger.SetGlobalLogger(zapLogger)

	logger.Info("Starting application",
		logger.String("app", appName),
		logger.String("version", configs.App.Version),
		logger.String("environment", configs.App.Environment),
	)

	// Initialize PostgreSQL database connection
	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}

	// Initialize Redis client
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}

	// Initialize NATS client
	natsClient, err := nats.NewClient(configs.NATS.URL, appName)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}

	// Driver side: profiles, location index
	geoIndex, err := geoindex.New(configs.Drivers.GeoBackend, redisClient)
	if err != nil {
		zapLogger.Fatal("Failed to initialize geo index", logger.Err(err))
	}
	driverRepo := driversRepo.NewDriverRepository(postgresClient.GetDB())
	driverUC := driversUC.NewDriverUC(configs, driverRepo, geoIndex)

	// Realtime hub publishes through NATS and fans out to local websocket clients
	rideRepo := ridesRepo.NewRideRepository(postgresClient.GetDB())
	wsManager := wspkg.NewManager(configs.JWT)
	hub := realtime.NewHub(configs, rideRepo, natsClient, wsManager)

	// Ride usecase. Driver ratings are written back to the driver profiles.
	rideUC, err := ridesUC.NewRideUC(configs, rideRepo, geoIndex, lock.NewRedisLocker(redisClient), driverRepo, hub)
	if err != nil {
		zapLogger.Fatal("Failed to initialize ride use case", logger.Err(err))
	}

	// Ride updates from every instance reach the clients connected here
	updatesHandler := realtimeNATS.NewRideUpdateHandler(hub, natsClient, nrApp)
	if err := updatesHandler.InitNATSConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Add middlewares (panic recovery should be first)
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(nrpkg.EchoMiddleware(nrApp))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	// Initialize enhanced health service
	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(postgresClient))
	healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	healthService.AddChecker("nats", health.NewNATSHealthChecker(natsClient))
	health.RegisterHealthEndpoints(e, appName, configs.App.Version, healthService)

	// Register service routes
	ridesHandler.NewHTTPHandler(rideUC, configs).RegisterRoutes(e)
	driversHandler.NewHTTPHandler(driverUC, configs, redisClient).RegisterRoutes(e)
	realtimeWS.NewWebSocketHandler(hub).RegisterRoutes(e)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server)
	srv.OnShutdown("postgres", func(context.Context) error { return postgresClient.Close() })
	srv.OnShutdown("redis", func(context.Context) error { return redisClient.Close() })
	srv.OnShutdown("nats", func(context.Context) error {
		natsClient.Close()
		return nil
	})
	srv.OnShutdown("ride-updates", func(context.Context) error {
		updatesHandler.Close()
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

	zapLogger.Info("Server exiting gracefully")
	_ = zapLogger.Sync()
}
