package models

import "time"

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	APIKey   APIKeyConfig
	Pricing  PricingConfig
	Dispatch DispatchConfig
	Rides    RidesConfig
	Drivers  DriversConfig
	Logger   LoggerConfig
	NewRelic NewRelicConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int // seconds
	WriteTimeout    int // seconds
	ShutdownTimeout int // seconds
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains JWT authentication configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// APIKeyConfig holds the keys accepted on internal routes
type APIKeyConfig struct {
	Keys map[string]string // service name -> key
}

// PricingConfig holds the fare coefficients
type PricingConfig struct {
	BaseFare    float64 `json:"base_fare"`
	PerMile     float64 `json:"per_mile"`
	MinimumFare float64 `json:"minimum_fare"`
	Currency    string  `json:"currency"`
}

// DispatchConfig controls driver selection at ride creation
type DispatchConfig struct {
	SearchRadiusMeters float64       `json:"search_radius_meters"`
	CandidateLimit     int           `json:"candidate_limit"`
	ClaimTTL           time.Duration `json:"claim_ttl"`
}

// RidesConfig contains rides service specific configuration
type RidesConfig struct {
	StoreTimeout    time.Duration `json:"store_timeout"`     // bound on every repository, index and lock call
	RatingLockTTL   time.Duration `json:"rating_lock_ttl"`   // per-driver rating recompute lock lifetime
	RatingLockTries int           `json:"rating_lock_tries"` // attempts before giving up with a conflict
	PublishRetries  int           `json:"publish_retries"`   // realtime publish attempts after the first
}

// DriversConfig configures the driver location index
type DriversConfig struct {
	GeoBackend          string  `json:"geo_backend"` // redis or memory
	DefaultNearbyLimit  int     `json:"default_nearby_limit"`
	DefaultNearbyRadius float64 `json:"default_nearby_radius"`

	LocationRateLimit  int           `json:"location_rate_limit"` // reports per driver per period, 0 disables
	LocationRatePeriod time.Duration `json:"location_rate_period"`
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level      string
	FilePath   string
	MaxSize    int64
	MaxAge     int
	MaxBackups int
	Compress   bool
	Type       string
}

// NewRelicConfig contains New Relic agent configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}
