package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `env:"IDBRIDGE_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"idbridge"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"idbridge"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// DatabaseConfig enables the Postgres stores when URL is set.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig enables the Redis provider registry when URL is set.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	KeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"idbridge"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Bus kinds for change-event delivery.
const (
	BusMemory = "memory"
	BusKafka  = "kafka"
	BusNATS   = "nats"
)

// EventsConfig selects and tunes the change-event channel.
type EventsConfig struct {
	Bus           string        `env:"EVENT_BUS" envDefault:"memory"`
	BufferSize    int           `env:"EVENT_BUFFER_SIZE" envDefault:"1024"`
	BatchSize     int           `env:"EVENT_BATCH_SIZE" envDefault:"200"`
	FlushInterval time.Duration `env:"EVENT_FLUSH_INTERVAL" envDefault:"250ms"`

	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopicPrefix string   `env:"KAFKA_TOPIC_PREFIX" envDefault:"idbridge.events"`
	KafkaGroup       string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"idbridge-writer"`

	NATSURL           string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"idbridge.events"`
	NATSQueue         string `env:"NATS_QUEUE" envDefault:"idbridge-writer"`
}

// AccessConfig points at the casbin policy used by the access gate.
// An empty PolicyFile loads the embedded default policy.
type AccessConfig struct {
	PolicyFile string `env:"ACCESS_POLICY_FILE"`
}

// IdentityConfig configures the external identity endpoint.
type IdentityConfig struct {
	UserInfoURL   string `env:"IDENTITY_USERINFO_URL" envDefault:"https://login.example.com/services/oauth2/userinfo"`
	SessionCookie string `env:"IDENTITY_SESSION_COOKIE" envDefault:"sid"`
}

// ProvidersConfig seeds the provider registry.
type ProvidersConfig struct {
	Registry string   `env:"PROVIDER_REGISTRY" envDefault:"memory"`
	Seed     []string `env:"PROVIDERS" envSeparator:","`
}

// Config is the full process configuration.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Events    EventsConfig
	Access    AccessConfig
	Identity  IdentityConfig
	Providers ProvidersConfig
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Events.Bus) {
	case BusMemory:
	case BusKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENT_BUS=kafka")
		}
	case BusNATS:
		if c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENT_BUS=nats")
		}
	default:
		return fmt.Errorf("unknown EVENT_BUS %q", c.Events.Bus)
	}
	switch c.Providers.Registry {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when PROVIDER_REGISTRY=postgres")
		}
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when PROVIDER_REGISTRY=redis")
		}
	default:
		return fmt.Errorf("unknown PROVIDER_REGISTRY %q", c.Providers.Registry)
	}
	if c.Events.BatchSize <= 0 {
		return fmt.Errorf("EVENT_BATCH_SIZE must be positive")
	}
	return nil
}
