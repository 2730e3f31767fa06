package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	POS       POSConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type RedisConfig struct {
	URL string
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// POSConfig holds the café-specific settings
type POSConfig struct {
	Timezone              string
	OrderNumberPrefix     string
	VoidPinHash           string
	RequireIdempotencyKey bool
	IdempotencyStore      string
}

// Location resolves the café timezone, falling back to UTC on a bad name
func (c *POSConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown POS_TIMEZONE %q, using UTC: %v", c.Timezone, err)
		return time.UTC
	}
	return loc
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "coffee-pos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("HTTP_READ_TIMEOUT", 15)
	viper.SetDefault("HTTP_WRITE_TIMEOUT", 30)
	viper.SetDefault("HTTP_SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "coffee_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Manila")
	viper.SetDefault("DB_PATH", "./storage/coffee_pos.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("POS_EVENTS_EXCHANGE", "pos.events")
	viper.SetDefault("POS_TIMEZONE", "Asia/Manila")
	viper.SetDefault("POS_ORDER_NUMBER_PREFIX", "ORD")
	viper.SetDefault("POS_VOID_PIN_HASH", "")
	viper.SetDefault("POS_REQUIRE_IDEMPOTENCY_KEY", false)
	viper.SetDefault("POS_IDEMPOTENCY_STORE", "database")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     time.Duration(viper.GetInt("HTTP_READ_TIMEOUT")) * time.Second,
			WriteTimeout:    time.Duration(viper.GetInt("HTTP_WRITE_TIMEOUT")) * time.Second,
			ShutdownTimeout: time.Duration(viper.GetInt("HTTP_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       viper.GetString("DB_DRIVER"),
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			Timezone:     viper.GetString("DB_TIMEZONE"),
			Path:         viper.GetString("DB_PATH"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("REDIS_URL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("POS_EVENTS_EXCHANGE"),
		},
		POS: POSConfig{
			Timezone:              viper.GetString("POS_TIMEZONE"),
			OrderNumberPrefix:     viper.GetString("POS_ORDER_NUMBER_PREFIX"),
			VoidPinHash:           viper.GetString("POS_VOID_PIN_HASH"),
			RequireIdempotencyKey: viper.GetBool("POS_REQUIRE_IDEMPOTENCY_KEY"),
			IdempotencyStore:      viper.GetString("POS_IDEMPOTENCY_STORE"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// SQLiteDSN points the pure-Go sqlite driver at Path with foreign keys enforced
func (c *DatabaseConfig) SQLiteDSN() string {
	return c.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
