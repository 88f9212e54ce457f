package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	TMDB      TMDBConfig
	Embed     EmbedConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`

	// WriteTimeout stays at zero so long stream relays are not cut off.
	WriteTimeout time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"0s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"megaflix"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"megaflix"`
	DBName   string `envconfig:"POSTGRES_DB" default:"megaflix"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RabbitMQConfig struct {
	// Enabled toggles publishing of user activity events.
	Enabled  bool   `envconfig:"RABBITMQ_ENABLED" default:"false"`
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"megaflix"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"megaflix"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

type TMDBConfig struct {
	BaseURL  string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	APIKey   string        `envconfig:"TMDB_API_KEY" required:"true"`
	Language string        `envconfig:"TMDB_LANGUAGE" default:"pt-BR"`
	Timeout  time.Duration `envconfig:"TMDB_TIMEOUT" default:"15s"`
}

type EmbedConfig struct {
	BaseURL string `envconfig:"EMBED_BASE_URL" default:"https://megaembed.com"`

	// HeaderTimeout bounds the wait for the upstream response headers only.
	HeaderTimeout time.Duration `envconfig:"EMBED_HEADER_TIMEOUT" default:"20s"`
}

type CacheConfig struct {
	ShortTTL      time.Duration `envconfig:"CACHE_SHORT_TTL" default:"1h"`
	LongTTL       time.Duration `envconfig:"CACHE_LONG_TTL" default:"24h"`
	SweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"10m"`
}

type AuthConfig struct {
	SessionTTL time.Duration `envconfig:"AUTH_SESSION_TTL" default:"168h"`
}

type RateLimitConfig struct {
	StreamRequests int           `envconfig:"RATE_LIMIT_STREAM_REQUESTS" default:"30"`
	StreamWindow   time.Duration `envconfig:"RATE_LIMIT_STREAM_WINDOW" default:"1m"`
	StreamBurst    int           `envconfig:"RATE_LIMIT_STREAM_BURST" default:"10"`

	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For is honoured.
	TrustedProxies []string `envconfig:"RATE_LIMIT_TRUSTED_PROXIES"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
