package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/St1cky1/taskboard/internal/infrastructure/client"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ServerConfig - настройки cmd/server
type ServerConfig struct {
	LogLevel string

	HTTPAddr string
	GRPCAddr string

	DatabaseDriver string
	Postgres       client.Config
	SQLitePath     string
	MigrationsPath string

	RedisURL      string
	TasksCacheTTL time.Duration

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string
	AuditQueue       string

	JWTSecretKey string
	JWTAccessTTL time.Duration
}

// ClientConfig - настройки cmd/taskctl
type ClientConfig struct {
	LogLevel string

	APIURL          string
	APIToken        string
	Timeout         time.Duration
	BreakerFailures int
	BreakerTimeout  time.Duration

	JWTSecretKey string
}

// LoadServer читает окружение (и .env, если он есть)
func LoadServer() (*ServerConfig, error) {
	_ = godotenv.Load()

	cfg := &ServerConfig{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr: getEnv("GRPC_ADDR", ":9090"),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		Postgres: client.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "taskboard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SQLitePath:     getEnv("SQLITE_PATH", "data/taskboard.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),

		RedisURL:      getEnv("REDIS_URL", ""),
		TasksCacheTTL: getDurationEnv("TASKS_CACHE_TTL", 5*time.Minute),

		RabbitMQHost:     getEnv("RABBITMQ_HOST", ""),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),
		AuditQueue:       getEnv("AUDIT_QUEUE", client.DefaultAuditQueue),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		JWTAccessTTL: getDurationEnv("JWT_ACCESS_TTL", 15*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServerConfig) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.TasksCacheTTL < 0 {
		return fmt.Errorf("TASKS_CACHE_TTL must not be negative")
	}
	return nil
}

// AuditEnabled - аудит включается только при заданном RABBITMQ_HOST
func (c *ServerConfig) AuditEnabled() bool {
	return c.RabbitMQHost != ""
}

func (c *ServerConfig) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.RabbitMQUser,
		c.RabbitMQPassword,
		c.RabbitMQHost,
		c.RabbitMQPort)
}

// LoadClient читает настройки клиента
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		LogLevel:        getEnv("LOG_LEVEL", "warn"),
		APIURL:          getEnv("TASKS_API_URL", "http://localhost:8080/api/v1"),
		APIToken:        getEnv("TASKS_API_TOKEN", ""),
		Timeout:         getDurationEnv("TASKS_API_TIMEOUT", 10*time.Second),
		BreakerFailures: getIntEnv("BREAKER_FAILURES", 5),
		BreakerTimeout:  getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
	}
	if cfg.BreakerFailures <= 0 {
		return nil, fmt.Errorf("BREAKER_FAILURES must be positive")
	}
	return cfg, nil
}

// GatewayConfig собирает настройки шлюза из конфигурации клиента
func (c *ClientConfig) GatewayConfig() client.GatewayConfig {
	gw := client.DefaultGatewayConfig(c.APIURL)
	gw.Timeout = c.Timeout
	gw.BreakerFailures = uint32(c.BreakerFailures)
	gw.BreakerTimeout = c.BreakerTimeout
	return gw
}

// NewLogger создает logrus логгер с уровнем из LOG_LEVEL
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("неизвестный LOG_LEVEL, используется info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
