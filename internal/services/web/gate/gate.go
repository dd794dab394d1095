package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/ledgerdesk/internal/services/web/gate"

// Fetcher loads the current user for a bearer token.
type Fetcher interface {
	FetchUser(ctx context.Context, token string) (User, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, token string) (User, error)

// FetchUser calls f.
func (f FetcherFunc) FetchUser(ctx context.Context, token string) (User, error) {
	return f(ctx, token)
}

// Config configures a Gate.
type Config struct {
	Fetcher Fetcher
	// RetryDelay is how long a transient fetch failure is remembered before
	// the next evaluation may fetch again. Non-positive means never retry.
	RetryDelay time.Duration
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Now        func() time.Time
}

// Env describes where the evaluation runs.
type Env struct {
	// Interactive is false for requests no user is looking at.
	Interactive bool
}

// Gate evaluates page requests against browser sessions.
type Gate struct {
	fetcher    Fetcher
	retryDelay time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// New builds a Gate. A Fetcher is required.
func New(cfg Config) (*Gate, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("gate: fetcher is required")
	}
	g := &Gate{
		fetcher:    cfg.Fetcher,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		tracer:     cfg.Tracer,
		now:        cfg.Now,
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(tracerName)
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g, nil
}

// Evaluate decides the outcome for path and, when the decision asks for
// it, starts the session's profile fetch. The fetch outlives ctx's
// cancellation; its result is applied to sess on arrival.
func (g *Gate) Evaluate(ctx context.Context, path string, sess *Session, env Env) Decision {
	in := Input{Path: path, Interactive: env.Interactive}
	if sess != nil {
		snap := sess.snapshot(g.now())
		in.HasToken = snap.token != ""
		in.User = snap.user
		in.Fetching = snap.fetching
		in.AuthExpired = snap.expired
		in.FetchFailed = snap.fetchFailed
	}

	decision := Decide(in)
	if decision.Fetch {
		if token, ok := sess.beginFetch(g.now()); ok {
			go g.fetch(context.WithoutCancel(ctx), sess, token)
		}
	}
	g.logger.DebugContext(ctx, "gate decision",
		"path", path,
		"outcome", decision.Outcome.String(),
		"location", decision.Location,
		"fetch", decision.Fetch,
		"clear_token", decision.ClearToken,
	)
	return decision
}

func (g *Gate) fetch(ctx context.Context, sess *Session, token string) {
	ctx, span := g.tracer.Start(ctx, "gate.fetch_user")
	defer span.End()

	user, err := g.fetcher.FetchUser(ctx, token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	outcome := g.resolve(ctx, sess, token, user, err)
	span.SetAttributes(attribute.String("gate.fetch.outcome", outcome))
}

// resolve applies a fetch result and names what happened to it.
func (g *Gate) resolve(ctx context.Context, sess *Session, token string, user User, err error) string {
	switch {
	case err == nil:
		if !sess.applyUser(token, user) {
			g.logger.DebugContext(ctx, "discarded stale profile", "user_id", user.ID.String())
			return "stale"
		}
		return "applied"
	case apperrors.Is(err, apperrors.KindUnauthorized):
		if !sess.expire(token) {
			return "stale"
		}
		g.logger.InfoContext(ctx, "session token rejected by backend")
		return "expired"
	default:
		retryAt := time.Time{}
		if g.retryDelay > 0 {
			retryAt = g.now().Add(g.retryDelay)
		}
		if !sess.fail(token, err, retryAt) {
			return "stale"
		}
		g.logger.WarnContext(ctx, "profile fetch failed", "error", err, "retry_at", retryAt)
		return "failed"
	}
}
