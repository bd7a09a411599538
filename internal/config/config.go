package config

import (
	"errors"
	"strings"
	"time"

	"github.com/aircnc/aircnc-server/internal/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds service configuration. Fields a service does not use stay at their zero value.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Auth      AuthClientConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host         string `env:"HOST"`
	Port         int    `env:"PORT" validate:"min=1,max=65535"`
	Environment  string `env:"ENVIRONMENT"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string        `env:"MONGODB_URI" validate:"required,mongodb_uri"`
	Database string        `env:"MONGODB_DATABASE" validate:"required"`
	Timeout  time.Duration `env:"MONGODB_TIMEOUT" validate:"gt=0"`
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret            string `env:"JWT_SECRET" validate:"required,min=16"`
	ExpirationSeconds int    `env:"JWT_EXPIRATION" validate:"gt=0"`
}

// Expiration is the token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	return time.Duration(j.ExpirationSeconds) * time.Second
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// AuthClientConfig points a service at the auth service used to authenticate requests.
type AuthClientConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func load(defaultPort int) *viper.Viper {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "aircnc")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("AUTH_TIMEOUT", 5)
	v.SetDefault("AUTH_CACHE_SECONDS", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	return v
}

func common(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:         v.GetString("HOST"),
			Port:         v.GetInt("PORT"),
			Environment:  v.GetString("ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// LoadAuthConfig loads and validates the auth service configuration.
func LoadAuthConfig() (*Config, error) {
	v := load(3001)
	cfg := common(v)
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		ExpirationSeconds: v.GetInt("JWT_EXPIRATION"),
	}
	if err := validate(cfg.Server, cfg.MongoDB, cfg.JWT); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadReservationsConfig loads and validates the reservations service configuration.
func LoadReservationsConfig() (*Config, error) {
	v := load(3000)
	cfg := common(v)
	cfg.Auth = AuthClientConfig{
		URL:      strings.TrimRight(v.GetString("AUTH_URL"), "/"),
		Timeout:  time.Duration(v.GetInt("AUTH_TIMEOUT")) * time.Second,
		CacheTTL: time.Duration(v.GetInt("AUTH_CACHE_SECONDS")) * time.Second,
	}
	if err := validate(cfg.Server, cfg.MongoDB); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(sections ...interface{}) error {
	val := validation.New()
	var lines []string
	for _, s := range sections {
		if err := val.Struct(s); err != nil {
			lines = append(lines, validation.Messages(err)...)
		}
	}
	if len(lines) > 0 {
		return errors.New("config validation failed:\n" + strings.Join(lines, "\n"))
	}
	return nil
}
