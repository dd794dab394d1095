package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a missing or expired record.
var ErrNotFound = errors.New("storage: not found")

// TokenRecord is one browser credential held server-side.
type TokenRecord struct {
	// SessionID is the opaque value kept in the browser cookie.
	SessionID string
	Token     string
	CreatedAt time.Time
	// ExpiresAt mirrors the token's exp claim. Zero means unknown.
	ExpiresAt time.Time
}

// TokenStore persists browser credentials by opaque session id.
type TokenStore interface {
	Close() error
	GetToken(ctx context.Context, sessionID string) (TokenRecord, error)
	PutToken(ctx context.Context, record TokenRecord) error
	DeleteToken(ctx context.Context, sessionID string) error
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
