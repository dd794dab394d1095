package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/ledgerdesk/internal/platform/storage/sqlitemigrate"
	webstorage "github.com/louisbranch/ledgerdesk/internal/services/web/storage"
	"github.com/louisbranch/ledgerdesk/internal/services/web/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for browser credentials.
type Store struct {
	sqlDB *sql.DB
}

var _ webstorage.TokenStore = (*Store)(nil)

// Open opens and migrates the credential store at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetToken loads the credential for sessionID. Expired rows read as
// webstorage.ErrNotFound.
func (s *Store) GetToken(ctx context.Context, sessionID string) (webstorage.TokenRecord, error) {
	if err := s.ready(); err != nil {
		return webstorage.TokenRecord{}, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return webstorage.TokenRecord{}, webstorage.ErrNotFound
	}

	var (
		record    webstorage.TokenRecord
		createdAt int64
		expiresAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT session_id, token, created_at, expires_at FROM token_sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&record.SessionID, &record.Token, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return webstorage.TokenRecord{}, webstorage.ErrNotFound
	}
	if err != nil {
		return webstorage.TokenRecord{}, fmt.Errorf("get token: %w", err)
	}
	record.CreatedAt = fromUnixMillis(createdAt)
	record.ExpiresAt = fromUnixMillis(expiresAt)
	if !record.ExpiresAt.IsZero() && !time.Now().Before(record.ExpiresAt) {
		return webstorage.TokenRecord{}, webstorage.ErrNotFound
	}
	return record, nil
}

// PutToken upserts a credential by session id; the last write wins.
func (s *Store) PutToken(ctx context.Context, record webstorage.TokenRecord) error {
	if err := s.ready(); err != nil {
		return err
	}
	record.SessionID = strings.TrimSpace(record.SessionID)
	if record.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(record.Token) == "" {
		return fmt.Errorf("token is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO token_sessions (session_id, token, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		    token = excluded.token,
		    created_at = excluded.created_at,
		    expires_at = excluded.expires_at`,
		record.SessionID,
		record.Token,
		toUnixMillis(record.CreatedAt),
		toUnixMillis(record.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put token: %w", err)
	}
	return nil
}

// DeleteToken removes the credential for sessionID. Missing rows are not an
// error.
func (s *Store) DeleteToken(ctx context.Context, sessionID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM token_sessions WHERE session_id = ?`, strings.TrimSpace(sessionID)); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// DeleteExpiredTokens purges rows whose expiry is at or before now.
func (s *Store) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM token_sessions WHERE expires_at > 0 AND expires_at <= ?`,
		toUnixMillis(now),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired tokens: %w", err)
	}
	return n, nil
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func toUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromUnixMillis(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}
