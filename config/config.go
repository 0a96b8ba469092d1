package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`
	AppMode string `envconfig:"APP_MODE" default:"debug"`
	LogMode string `envconfig:"LOG_MODE" default:"development"`

	DBHost            string        `envconfig:"DB_HOST" default:"localhost"`
	DBUser            string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword        string        `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName            string        `envconfig:"DB_NAME" default:"chatgraph"`
	DBPort            string        `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	MigrationsDir     string        `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	JWTSecret    string `envconfig:"JWT_SECRET" default:"change-me"`
	JWTExpiryMin int    `envconfig:"JWT_EXPIRY_MIN" default:"60"`

	RedisEnabled  bool          `envconfig:"REDIS_ENABLED" default:"true"`
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string        `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	UserCacheTTL  time.Duration `envconfig:"USER_CACHE_TTL" default:"5m"`

	RateLimitAuth      int           `envconfig:"RATE_LIMIT_AUTH" default:"5"`
	RateLimitMutations int           `envconfig:"RATE_LIMIT_MUTATIONS" default:"120"`
	RateLimitWindow    time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	S3Region     string        `envconfig:"S3_REGION" default:""`
	S3Bucket     string        `envconfig:"S3_BUCKET" default:""`
	S3AccessKey  string        `envconfig:"S3_ACCESS_KEY" default:""`
	S3SecretKey  string        `envconfig:"S3_SECRET_KEY" default:""`
	S3Endpoint   string        `envconfig:"S3_ENDPOINT" default:""`
	S3PublicBase string        `envconfig:"S3_PUBLIC_BASE" default:""`
	S3PresignTTL time.Duration `envconfig:"S3_PRESIGN_TTL" default:"15m"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// S3Enabled reports whether picture uploads can be offered.
func (c *Config) S3Enabled() bool {
	return c.S3Region != "" && c.S3Bucket != ""
}
