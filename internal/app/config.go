package app

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/backoffice/internal/platform/cache"
)

// Config holds runtime configuration for the service, the worker and reportctl.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN is optional. Without it export history is only logged.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:5000"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	BackendUserID  string        `envconfig:"BACKEND_USER_ID" default:"1"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"reports@backoffice.local"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`

	// GotenbergURL enables the print-pdf format when set.
	GotenbergURL string `envconfig:"GOTENBERG_URL"`

	ExportDir string `envconfig:"EXPORT_DIR" default:"./exports"`

	// WorkerMetricsAddr is where the worker serves /metrics. Empty disables it.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	DigestTo           string `envconfig:"DIGEST_TO"`
	DigestCron         string `envconfig:"DIGEST_CRON" default:"0 7 * * 1"`
	DigestReport       string `envconfig:"DIGEST_REPORT" default:"sales"`
	DigestLookbackDays int    `envconfig:"DIGEST_LOOKBACK_DAYS" default:"7"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return errors.New("backend url must be provided")
	}
	if strings.TrimSpace(c.BackendUserID) == "" {
		return errors.New("backend user id must be provided")
	}
	if c.DigestTo != "" {
		switch c.DigestReport {
		case "sales", "products":
		default:
			return errors.New("digest report must be sales or products")
		}
		if c.DigestLookbackDays <= 0 {
			return errors.New("digest lookback must be positive")
		}
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Redis returns the connection settings shared by the cache and the job queue.
func (c *Config) Redis() cache.Options {
	return cache.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB}
}

// DigestEnabled reports whether the worker should schedule the report digest.
func (c *Config) DigestEnabled() bool {
	return c != nil && c.DigestTo != "" && c.DigestCron != ""
}
