package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure. It contains
// settings for the environment, HTTP server, database connection, upstream
// portal, notifier, scheduler and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"1m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"aimawatch" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Upstream configures how the checker talks to the portal.
	Upstream struct {
		// LoginURL is the page carrying the login form and CSRF token
		LoginURL string `env:"UPSTREAM_LOGIN_URL" env-default:"https://services.aima.gov.pt/RAR/login.php" yaml:"loginURL"` //nolint: lll
		// CheckURL is the endpoint credentials and token are posted to
		CheckURL string `env:"UPSTREAM_CHECK_URL" env-default:"https://services.aima.gov.pt/RAR/login_check3.php" yaml:"checkURL"` //nolint: lll
		// ProxyURL optionally routes portal traffic through an HTTP proxy.
		// Credentials embedded in this URL are masked in all log output.
		ProxyURL string `env:"UPSTREAM_PROXY_URL" env-default:"" yaml:"proxyURL"`
		// InsecureSkipTLSVerify disables TLS certificate validation for
		// portal requests. The portal is known to serve a misconfigured
		// certificate chain; enabling this is logged loudly at startup.
		InsecureSkipTLSVerify bool `env:"UPSTREAM_INSECURE_SKIP_TLS_VERIFY" env-default:"true" yaml:"insecureSkipTLSVerify"` //nolint: lll
		// Timeout bounds every single portal request
		Timeout time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"30s" yaml:"timeout"`
		// ArtifactPath is the single-slot scratch file where the raw body
		// of an unparsable response is kept for debugging markup drift
		ArtifactPath string `env:"UPSTREAM_ARTIFACT_PATH" env-default:"/tmp/aimawatch-last-parse-failure.html" yaml:"artifactPath"` //nolint: lll
	} `yaml:"upstream"`

	// Telegram configures the notifier.
	Telegram struct {
		// BotToken authenticates against the Bot API. It also serves as the
		// shared secret credential keys are derived from.
		BotToken string `env:"TELEGRAM_BOT_TOKEN" yaml:"botToken"`
		// APIBaseURL allows pointing the notifier at a test server
		APIBaseURL string `env:"TELEGRAM_API_BASE_URL" env-default:"https://api.telegram.org" yaml:"apiBaseURL"`
	} `yaml:"telegram"`

	// Scheduler configures the hourly check cycle.
	Scheduler struct {
		// Timezone is the IANA zone the notification windows are evaluated in
		Timezone string `env:"SCHEDULER_TIMEZONE" env-default:"Europe/Lisbon" yaml:"timezone"`
	} `yaml:"scheduler"`

	// JWT configures authentication for the on-demand check API.
	JWT struct {
		// Secret is the HS256 signing secret
		Secret string `env:"JWT_SECRET" yaml:"secret"`
	} `yaml:"jwt"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
