package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/sessioncookie"
	webstorage "github.com/louisbranch/ledgerdesk/internal/services/web/storage"
)

// SessionCookieName holds the opaque id for the Server backend.
const SessionCookieName = "ld_session"

// Server keeps tokens in a TokenStore and gives the browser only an opaque
// session id.
type Server struct {
	records webstorage.TokenStore
	jar     sessioncookie.Jar
	now     func() time.Time
}

// NewServer returns the server-side backend over records.
func NewServer(records webstorage.TokenStore, policy requestmeta.SchemePolicy) (*Server, error) {
	if records == nil {
		return nil, errors.New("token records are required")
	}
	return &Server{
		records: records,
		jar:     sessioncookie.Jar{Name: SessionCookieName, Policy: policy},
		now:     time.Now,
	}, nil
}

// Read resolves the session id cookie to a live token.
func (s *Server) Read(r *http.Request) (string, bool) {
	id, ok := s.jar.Read(r)
	if !ok {
		return "", false
	}
	record, err := s.records.GetToken(r.Context(), id)
	if err != nil {
		if !errors.Is(err, webstorage.ErrNotFound) {
			slog.WarnContext(r.Context(), "read token session", "error", err)
		}
		return "", false
	}
	if !Live(record.Token, s.now()) {
		return "", false
	}
	return record.Token, true
}

// Write stores token under a fresh session id and replaces any previous
// record for this browser.
func (s *Server) Write(w http.ResponseWriter, r *http.Request, token string) error {
	ctx := r.Context()
	if prev, ok := s.jar.Read(r); ok {
		if err := s.records.DeleteToken(ctx, prev); err != nil {
			return fmt.Errorf("drop previous token session: %w", err)
		}
	}

	record := webstorage.TokenRecord{
		SessionID: uuid.NewString(),
		Token:     token,
		CreatedAt: s.now().UTC(),
	}
	if exp, ok := Expiry(token); ok {
		record.ExpiresAt = exp
	}
	if err := s.records.PutToken(ctx, record); err != nil {
		return fmt.Errorf("store token session: %w", err)
	}
	s.jar.Write(w, r, record.SessionID)
	return nil
}

// Clear deletes the server-side record and expires the cookie.
func (s *Server) Clear(w http.ResponseWriter, r *http.Request) error {
	s.jar.Clear(w, r)
	id, ok := s.jar.Read(r)
	if !ok {
		return nil
	}
	if err := s.records.DeleteToken(r.Context(), id); err != nil {
		return fmt.Errorf("clear token session: %w", err)
	}
	return nil
}

// Sweep purges expired records.
func (s *Server) Sweep(ctx context.Context, now time.Time) (int64, error) {
	return s.records.DeleteExpiredTokens(ctx, now)
}
