package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/ledgerdesk/internal/platform/timeouts"
	"github.com/louisbranch/ledgerdesk/internal/services/web/backend"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/storage/sqlite"
	"github.com/louisbranch/ledgerdesk/internal/services/web/tokenstore"
)

// Token store backends.
const (
	TokenStoreCookie = "cookie"
	TokenStoreSQLite = "sqlite"
)

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr       string
	BackendBaseURL string
	APIPrefix      string
	BackendTimeout time.Duration
	// TokenStore selects where bearer tokens live: TokenStoreCookie keeps
	// them in the browser, TokenStoreSQLite on this host at DBPath.
	TokenStore          string
	DBPath              string
	LoadingWait         time.Duration
	FetchRetryDelay     time.Duration
	SessionIdleTTL      time.Duration
	TrustForwardedProto bool
	Logger              *slog.Logger
}

// Server hosts the web HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	registry   *gate.Registry
	sweeper    tokenstore.Sweeper
	closer     io.Closer
	idleTTL    time.Duration
	logger     *slog.Logger
	closeOnce  sync.Once
}

// NewServer builds a configured web server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if strings.TrimSpace(config.BackendBaseURL) == "" {
		return nil, errors.New("backend base url is required")
	}
	if config.BackendTimeout <= 0 {
		config.BackendTimeout = timeouts.BackendRequest
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := backend.NewClient(config.BackendBaseURL, config.APIPrefix, &http.Client{Timeout: config.BackendTimeout})
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}
	policy := requestmeta.SchemePolicy{TrustForwardedProto: config.TrustForwardedProto}

	srv := &Server{httpAddr: httpAddr, idleTTL: config.SessionIdleTTL, logger: logger}
	var tokens tokenstore.Store
	switch strings.ToLower(strings.TrimSpace(config.TokenStore)) {
	case "", TokenStoreCookie:
		tokens = tokenstore.NewCookie(policy)
	case TokenStoreSQLite:
		records, err := sqlite.Open(ctx, config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open token database: %w", err)
		}
		server, err := tokenstore.NewServer(records, policy)
		if err != nil {
			_ = records.Close()
			return nil, fmt.Errorf("build token store: %w", err)
		}
		tokens = server
		srv.sweeper = server
		srv.closer = records
	default:
		return nil, fmt.Errorf("unknown token store %q", config.TokenStore)
	}

	sessionGate, err := gate.New(gate.Config{
		Fetcher:    client,
		RetryDelay: config.FetchRetryDelay,
		Logger:     logger,
	})
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("build session gate: %w", err)
	}
	srv.registry = gate.NewRegistry(config.SessionIdleTTL)

	handler, err := NewHandler(Dependencies{
		Account:     client,
		Gate:        sessionGate,
		Registry:    srv.registry,
		Tokens:      tokens,
		Policy:      policy,
		LoadingWait: config.LoadingWait,
		Logger:      logger,
	})
	if err != nil {
		srv.Close()
		return nil, fmt.Errorf("build handler: %w", err)
	}
	srv.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return srv, nil
}

// ListenAndServe runs the HTTP server and the session sweepers until the
// context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	sweepCtx, stopSweeps := context.WithCancel(ctx)
	defer stopSweeps()
	go s.registry.Run(sweepCtx, sweepInterval(s.idleTTL))
	if s.sweeper != nil {
		go s.sweepTokens(sweepCtx, timeouts.SessionSweep)
	}

	serveErr := make(chan error, 1)
	s.logger.Info("web listening", "addr", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (s *Server) sweepTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := s.sweeper.Sweep(ctx, now)
			if err != nil {
				s.logger.WarnContext(ctx, "sweep expired tokens", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.DebugContext(ctx, "swept expired tokens", "count", removed)
			}
		}
	}
}

// Close releases the token database, if one is open.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		if s.closer == nil {
			return
		}
		if err := s.closer.Close(); err != nil {
			s.logger.Warn("close token database", "error", err)
		}
	})
}
