package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	// Database
	DBDriver   string `env:"DB_DRIVER" env-default:"postgres"`
	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" env-default:"backdrop_db"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"backdrop.db"`

	// JWT
	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" env-default:"24h"`

	// Server
	Port          string `env:"PORT" env-default:"8000"`
	CORSOrigins   string `env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
	BodyLimitMB   int    `env:"BODY_LIMIT_MB" env-default:"16"`
	APIRateLimit  int    `env:"API_RATE_LIMIT" env-default:"120"`
	AuthRateLimit int    `env:"AUTH_RATE_LIMIT" env-default:"10"`

	// Uploads
	UploadDir       string `env:"UPLOAD_DIR" env-default:"static/uploads"`
	PublicUploadURL string `env:"PUBLIC_UPLOAD_URL" env-default:"/static/uploads"`

	// Marketplace
	MarginRate      float64 `env:"MARKETPLACE_MARGIN_RATE" env-default:"0.1"`
	BidWriteRetries int     `env:"BID_WRITE_RETRIES" env-default:"3"`

	// Events
	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" env-default:"bid-events"`

	// Observability
	SentryDSN    string        `env:"SENTRY_DSN"`
	AppEnv       string        `env:"APP_ENV" env-default:"development"`
	LogRetention time.Duration `env:"LOG_RETENTION" env-default:"720h"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD environment variable is required")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.BidWriteRetries < 1 {
		return fmt.Errorf("BID_WRITE_RETRIES must be at least 1")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
