package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `env-prefix:"SERVER_"`
	Database DatabaseConfig `env-prefix:"DATABASE_"`
	Redis    RedisConfig    `env-prefix:"REDIS_"`
	Kafka    KafkaConfig    `env-prefix:"KAFKA_"`
	Auth     AuthConfig     `env-prefix:"AUTH_"`
	Logging  LoggingConfig  `env-prefix:"LOG_"`
}

type ServerConfig struct {
	Port            int           `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
}

type DatabaseConfig struct {
	Host        string `env:"HOST" env-default:"localhost"`
	Port        int    `env:"PORT" env-default:"5432"`
	User        string `env:"USER" env-default:"postgres"`
	Password    string `env:"PASSWORD" env-default:""`
	DBName      string `env:"NAME" env-default:"licensing_portal"`
	SSLMode     string `env:"SSLMODE" env-default:"disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"true"`
}

type RedisConfig struct {
	// Addr empty means the in-process session store is used instead.
	Addr     string `env:"ADDR" env-default:""`
	Password string `env:"PASSWORD" env-default:""`
	DB       int    `env:"DB" env-default:"0"`
}

type KafkaConfig struct {
	// Brokers empty disables event publishing.
	Brokers []string `env:"BROKERS" env-default:""`
	Topic   string   `env:"TOPIC" env-default:"auth.events"`
}

type AuthConfig struct {
	// JWTSecret has no default on purpose: an unset signing key is a
	// deployment error, not something to paper over.
	JWTSecret           string        `env:"JWT_SECRET"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	SessionReapInterval time.Duration `env:"SESSION_REAP_INTERVAL" env-default:"1h"`

	// SessionBackend selects where session records live: "memory" keeps
	// them in-process, "postgres" makes them survive restarts, "redis"
	// shares them across replicas.
	SessionBackend string `env:"SESSION_BACKEND" env-default:"memory"`

	Argon2Memory      uint32 `env:"ARGON2_MEMORY" env-default:"65536"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS" env-default:"3"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" env-default:"2"`
	Argon2SaltLength  uint32 `env:"ARGON2_SALT_LENGTH" env-default:"16"`
	Argon2KeyLength   uint32 `env:"ARGON2_KEY_LENGTH" env-default:"32"`
}

type LoggingConfig struct {
	Level       string `env:"LEVEL" env-default:"info"`
	Environment string `env:"ENV" env-default:"development"`
}

// Load reads configuration from the environment, sourcing a .env file first
// if one is present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	// An unset broker list parses as one empty element; treat it as none.
	brokers := cfg.Kafka.Brokers[:0]
	for _, b := range cfg.Kafka.Brokers {
		if strings.TrimSpace(b) != "" {
			brokers = append(brokers, b)
		}
	}
	cfg.Kafka.Brokers = brokers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET must be set; refusing to start with an empty signing key")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	switch c.Auth.SessionBackend {
	case "memory", "postgres", "redis":
	default:
		return errors.New("AUTH_SESSION_BACKEND must be one of: memory, postgres, redis")
	}
	if c.Auth.SessionBackend == "redis" && c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR must be set when AUTH_SESSION_BACKEND is redis")
	}
	return nil
}
