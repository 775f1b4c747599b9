package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// AuthConfig holds the token signing material. The two secrets must be set
// and must differ; the token service rejects anything else at startup.
type AuthConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL,     default=168h"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL,    default=720h"`
	RotateRefresh bool          `env:"JWT_ROTATE_REFRESH, default=false"`
}

// RateLimitConfig selects the counter backend: "memory" keeps per-instance
// state, "redis" shares one budget across instances.
type RateLimitConfig struct {
	Backend       string        `env:"RATELIMIT_BACKEND,        default=memory"`
	SweepInterval time.Duration `env:"RATELIMIT_SWEEP_INTERVAL, default=5m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=school_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
