package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/piresc/hamroride/internal/pkg/models"
	"github.com/spf13/viper"
)

// InitConfig loads configuration for a service. In the local environment the
// env file at configPath is loaded first; real environment variables always win.
func InitConfig(configPath string) *models.Config {
	v := newViper()
	if v.GetString("APP_ENV") == "local" {
		if err := godotenv.Load(configPath); err != nil {
			log.Println("error loading config from file", err)
		}
	}
	return loadConfig(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_NAME", "hamroride")
	v.SetDefault("APP_DEBUG", true)

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30)

	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("NATS_URL", "nats://localhost:4222")

	v.SetDefault("JWT_EXPIRATION", 60)
	v.SetDefault("JWT_ISSUER", "hamroride")

	v.SetDefault("PRICING_BASE_FARE", 2.0)
	v.SetDefault("PRICING_PER_MILE", 1.25)
	v.SetDefault("PRICING_MINIMUM_FARE", 5.0)
	v.SetDefault("PRICING_CURRENCY", "USD")

	v.SetDefault("DISPATCH_SEARCH_RADIUS_METERS", 5000.0)
	v.SetDefault("DISPATCH_CANDIDATE_LIMIT", 5)
	v.SetDefault("DISPATCH_CLAIM_TTL", "10s")

	v.SetDefault("RIDES_STORE_TIMEOUT", "3s")
	v.SetDefault("RIDES_RATING_LOCK_TTL", "5s")
	v.SetDefault("RIDES_RATING_LOCK_TRIES", 5)
	v.SetDefault("RIDES_PUBLISH_RETRIES", 2)

	v.SetDefault("DRIVERS_GEO_BACKEND", "redis")
	v.SetDefault("DRIVERS_NEARBY_LIMIT", 5)
	v.SetDefault("DRIVERS_NEARBY_RADIUS_METERS", 3000.0)
	v.SetDefault("DRIVERS_LOCATION_RATE_LIMIT", 30)
	v.SetDefault("DRIVERS_LOCATION_RATE_PERIOD", "1m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_PATH", "")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_AGE", 7)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_COMPRESS", true)
	v.SetDefault("LOG_TYPE", "stdout")

	v.SetDefault("NEW_RELIC_ENABLED", false)
}

func loadConfig(v *viper.Viper) *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = v.GetString("APP_NAME")
	configs.App.Environment = v.GetString("APP_ENV")
	configs.App.Debug = v.GetBool("APP_DEBUG")
	configs.App.Version = v.GetString("APP_VERSION")

	// Server config
	configs.Server.Host = v.GetString("SERVER_HOST")
	configs.Server.Port = v.GetInt("SERVER_PORT")
	configs.Server.ReadTimeout = v.GetInt("SERVER_READ_TIMEOUT")
	configs.Server.WriteTimeout = v.GetInt("SERVER_WRITE_TIMEOUT")
	configs.Server.ShutdownTimeout = v.GetInt("SERVER_SHUTDOWN_TIMEOUT")

	// Database config
	configs.Database.Driver = v.GetString("DB_DRIVER")
	configs.Database.Host = v.GetString("DB_HOST")
	configs.Database.Port = v.GetInt("DB_PORT")
	configs.Database.Username = v.GetString("DB_USERNAME")
	configs.Database.Password = v.GetString("DB_PASSWORD")
	configs.Database.Database = v.GetString("DB_DATABASE")
	configs.Database.SSLMode = v.GetString("DB_SSL_MODE")
	configs.Database.MaxConns = v.GetInt("DB_MAX_CONNS")
	configs.Database.IdleConns = v.GetInt("DB_IDLE_CONNS")

	// Redis config
	configs.Redis.Host = v.GetString("REDIS_HOST")
	configs.Redis.Port = v.GetInt("REDIS_PORT")
	configs.Redis.Password = v.GetString("REDIS_PASSWORD")
	configs.Redis.DB = v.GetInt("REDIS_DB")
	configs.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")

	// NATS config
	configs.NATS.URL = v.GetString("NATS_URL")

	// JWT config
	configs.JWT.Secret = v.GetString("JWT_SECRET")
	configs.JWT.Expiration = v.GetInt("JWT_EXPIRATION")
	configs.JWT.Issuer = v.GetString("JWT_ISSUER")

	// Internal API keys, formatted as service=key pairs separated by commas
	configs.APIKey.Keys = parseKeyPairs(v.GetString("INTERNAL_API_KEYS"))

	// Pricing config
	configs.Pricing.BaseFare = v.GetFloat64("PRICING_BASE_FARE")
	configs.Pricing.PerMile = v.GetFloat64("PRICING_PER_MILE")
	configs.Pricing.MinimumFare = v.GetFloat64("PRICING_MINIMUM_FARE")
	configs.Pricing.Currency = v.GetString("PRICING_CURRENCY")

	// Dispatch config
	configs.Dispatch.SearchRadiusMeters = v.GetFloat64("DISPATCH_SEARCH_RADIUS_METERS")
	configs.Dispatch.CandidateLimit = v.GetInt("DISPATCH_CANDIDATE_LIMIT")
	configs.Dispatch.ClaimTTL = getDuration(v, "DISPATCH_CLAIM_TTL", 10*time.Second)

	// Rides config
	configs.Rides.StoreTimeout = getDuration(v, "RIDES_STORE_TIMEOUT", 3*time.Second)
	configs.Rides.RatingLockTTL = getDuration(v, "RIDES_RATING_LOCK_TTL", 5*time.Second)
	configs.Rides.RatingLockTries = v.GetInt("RIDES_RATING_LOCK_TRIES")
	configs.Rides.PublishRetries = v.GetInt("RIDES_PUBLISH_RETRIES")

	// Drivers config
	configs.Drivers.GeoBackend = v.GetString("DRIVERS_GEO_BACKEND")
	configs.Drivers.DefaultNearbyLimit = v.GetInt("DRIVERS_NEARBY_LIMIT")
	configs.Drivers.DefaultNearbyRadius = v.GetFloat64("DRIVERS_NEARBY_RADIUS_METERS")
	configs.Drivers.LocationRateLimit = v.GetInt("DRIVERS_LOCATION_RATE_LIMIT")
	configs.Drivers.LocationRatePeriod = getDuration(v, "DRIVERS_LOCATION_RATE_PERIOD", time.Minute)

	// NewRelic config
	configs.NewRelic.LicenseKey = v.GetString("NEW_RELIC_LICENSE_KEY")
	configs.NewRelic.AppName = v.GetString("NEW_RELIC_APP_NAME")
	configs.NewRelic.Enabled = v.GetBool("NEW_RELIC_ENABLED")
	configs.NewRelic.LogsEnabled = v.GetBool("NEW_RELIC_LOGS_ENABLED")
	configs.NewRelic.ForwardLogs = v.GetBool("NEW_RELIC_FORWARD_LOGS")

	// Logger config
	configs.Logger.Level = v.GetString("LOG_LEVEL")
	configs.Logger.FilePath = v.GetString("LOG_FILE_PATH")
	configs.Logger.MaxSize = v.GetInt64("LOG_MAX_SIZE")
	configs.Logger.MaxAge = v.GetInt("LOG_MAX_AGE")
	configs.Logger.MaxBackups = v.GetInt("LOG_MAX_BACKUPS")
	configs.Logger.Compress = v.GetBool("LOG_COMPRESS")
	configs.Logger.Type = v.GetString("LOG_TYPE")

	return configs
}

// getDuration accepts Go duration strings ("3s") or bare milliseconds
func getDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms := v.GetInt64(key); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("Warning: Invalid duration value for %s, using default: %s", key, defaultValue)
	return defaultValue
}

func parseKeyPairs(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, key, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || key == "" {
			continue
		}
		keys[strings.TrimSpace(name)] = strings.TrimSpace(key)
	}
	return keys
}
