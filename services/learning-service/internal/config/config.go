package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/elearning-api/shared/database"
	"github.com/vasapolrittideah/elearning-api/shared/mailer"
	"github.com/vasapolrittideah/elearning-api/shared/media"
	"github.com/vasapolrittideah/elearning-api/shared/utilities"
)

const EnvironmentProduction = "production"

// LearningServiceConfig is the full configuration of the learning service.
// It is parsed once at start-up and passed to constructors explicitly.
type LearningServiceConfig struct {
	Environment    string   `env:"APP_ENV"          envDefault:"development"`
	HTTPAddr       string   `env:"HTTP_ADDR"        envDefault:":8000"`
	GRPCHealthAddr string   `env:"GRPC_HEALTH_ADDR" envDefault:":9000"`
	AllowedOrigins []string `env:"ORIGIN"           envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL"        envDefault:"info"`

	// CourseCacheTTL bounds how long a browse projection may be served from
	// the cache. Zero keeps entries until they are invalidated.
	CourseCacheTTL time.Duration `env:"COURSE_CACHE_TTL" envDefault:"0s"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	Token      TokenConfig            `envPrefix:"TOKEN_"`
	Mongo      database.MongoConfig   `envPrefix:"MONGO_"`
	Redis      database.RedisConfig   `envPrefix:"REDIS_"`
	SMTP       mailer.Config          `envPrefix:"SMTP_"`
	Cloudinary media.Config           `envPrefix:"CLOUDINARY_"`
	Consul     utilities.ConsulConfig `envPrefix:"CONSUL_"`
}

// TokenConfig holds token secrets and lifetimes.
type TokenConfig struct {
	Issuer                   string        `env:"ISSUER"                      envDefault:"elearning-api"`
	AccessTokenSecret        string        `env:"ACCESS_SECRET"`
	RefreshTokenSecret       string        `env:"REFRESH_SECRET"`
	ActivationTokenSecret    string        `env:"ACTIVATION_SECRET"`
	AccessTokenExpiresIn     time.Duration `env:"ACCESS_EXPIRES_IN"           envDefault:"5m"`
	RefreshTokenExpiresIn    time.Duration `env:"REFRESH_EXPIRES_IN"          envDefault:"72h"`
	ActivationTokenExpiresIn time.Duration `env:"ACTIVATION_EXPIRES_IN"       envDefault:"5m"`
	SessionTTL               time.Duration `env:"SESSION_TTL"                 envDefault:"720h"`
}

// Load parses the configuration from environment variables and validates it.
func Load() (*LearningServiceConfig, error) {
	cfg, err := env.ParseAs[LearningServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *LearningServiceConfig) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Validate checks the sections that have no safe default.
func (c *LearningServiceConfig) Validate() error {
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if err := c.Mongo.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if c.CourseCacheTTL < 0 {
		return errors.New("COURSE_CACHE_TTL must not be negative")
	}
	return nil
}

// Validate checks if the token configuration is valid.
func (c TokenConfig) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("missing TOKEN_ACCESS_SECRET environment variable")
	}
	if c.RefreshTokenSecret == "" {
		return errors.New("missing TOKEN_REFRESH_SECRET environment variable")
	}
	if c.ActivationTokenSecret == "" {
		return errors.New("missing TOKEN_ACTIVATION_SECRET environment variable")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("TOKEN_ACCESS_SECRET and TOKEN_REFRESH_SECRET must differ")
	}
	if c.AccessTokenExpiresIn <= 0 || c.RefreshTokenExpiresIn <= 0 || c.ActivationTokenExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("TOKEN_SESSION_TTL must be positive")
	}
	return nil
}
