// Package web parses web command flags and launches the browser-facing
// service.
package web

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/ledgerdesk/internal/platform/cmd"
	"github.com/louisbranch/ledgerdesk/internal/platform/logging"
	"github.com/louisbranch/ledgerdesk/internal/services/web"
)

// Config holds web command configuration. Environment variables carry the
// LEDGERDESK_ prefix.
type Config struct {
	HTTPAddr            string        `env:"WEB_HTTP_ADDR" envDefault:"localhost:8080"`
	BackendBaseURL      string        `env:"WEB_BACKEND_BASE_URL" envDefault:"http://localhost:8000"`
	APIPrefix           string        `env:"WEB_API_PREFIX" envDefault:"/api/v1"`
	BackendTimeout      time.Duration `env:"WEB_BACKEND_TIMEOUT" envDefault:"10s"`
	TokenStore          string        `env:"WEB_TOKEN_STORE" envDefault:"cookie"`
	DBPath              string        `env:"WEB_DB_PATH" envDefault:"data/web.db"`
	LoadingWait         time.Duration `env:"WEB_LOADING_WAIT" envDefault:"1500ms"`
	FetchRetryDelay     time.Duration `env:"WEB_FETCH_RETRY_DELAY" envDefault:"2s"`
	SessionIdleTTL      time.Duration `env:"WEB_SESSION_IDLE_TTL" envDefault:"30m"`
	TrustForwardedProto bool          `env:"WEB_TRUST_FORWARDED_PROTO"`
	LogLevel            string        `env:"WEB_LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"WEB_LOG_FORMAT" envDefault:"text"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.BackendBaseURL, "backend-base-url", cfg.BackendBaseURL, "Product backend base URL")
	fs.StringVar(&cfg.APIPrefix, "api-prefix", cfg.APIPrefix, "Path prefix of the backend REST API")
	fs.DurationVar(&cfg.BackendTimeout, "backend-timeout", cfg.BackendTimeout, "Timeout of a single backend call")
	fs.StringVar(&cfg.TokenStore, "token-store", cfg.TokenStore, "Where bearer tokens are kept: cookie or sqlite")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite path for the sqlite token store")
	fs.DurationVar(&cfg.LoadingWait, "loading-wait", cfg.LoadingWait, "How long a page waits for the profile before showing the loading page")
	fs.DurationVar(&cfg.FetchRetryDelay, "fetch-retry-delay", cfg.FetchRetryDelay, "Delay before a failed profile fetch is retried (0 disables retries)")
	fs.DurationVar(&cfg.SessionIdleTTL, "session-idle-ttl", cfg.SessionIdleTTL, "Idle time after which cached sessions are evicted")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Trust X-Forwarded-Proto from the fronting proxy")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the web server and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	options := entrypoint.RunOptions{
		Logging: logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat},
	}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceWeb, options, func(ctx context.Context) error {
		server, err := web.NewServer(ctx, web.Config{
			HTTPAddr:            cfg.HTTPAddr,
			BackendBaseURL:      cfg.BackendBaseURL,
			APIPrefix:           cfg.APIPrefix,
			BackendTimeout:      cfg.BackendTimeout,
			TokenStore:          cfg.TokenStore,
			DBPath:              cfg.DBPath,
			LoadingWait:         cfg.LoadingWait,
			FetchRetryDelay:     cfg.FetchRetryDelay,
			SessionIdleTTL:      cfg.SessionIdleTTL,
			TrustForwardedProto: cfg.TrustForwardedProto,
		})
		if err != nil {
			return fmt.Errorf("init web server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve web: %w", err)
		}
		return nil
	})
}
