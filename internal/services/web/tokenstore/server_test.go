package tokenstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/storage/sqlite"
)

func newServerStore(t *testing.T) (*Server, *sqlite.Store) {
	t.Helper()

	records, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("open records: %v", err)
	}
	t.Cleanup(func() { _ = records.Close() })

	store, err := NewServer(records, requestmeta.SchemePolicy{})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return store, records
}

func sessionCookieFrom(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", SessionCookieName)
	return nil
}

func TestNewServerRequiresRecords(t *testing.T) {
	if _, err := NewServer(nil, requestmeta.SchemePolicy{}); err == nil {
		t.Fatal("expected missing records error")
	}
}

func TestServerWriteKeepsTokenOffTheBrowser(t *testing.T) {
	store, _ := newServerStore(t)
	token := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	rr := httptest.NewRecorder()
	if err := store.Write(rr, httptest.NewRequest(http.MethodPost, "/login", nil), token); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	cookie := sessionCookieFrom(t, rr)
	if _, err := uuid.Parse(cookie.Value); err != nil {
		t.Fatalf("session cookie %q is not a uuid: %v", cookie.Value, err)
	}
	if cookie.Value == token {
		t.Fatal("raw token leaked into the browser cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	got, ok := store.Read(req)
	if !ok || got != token {
		t.Fatalf("Read() = %q, %v; want stored token", got, ok)
	}
}

func TestServerWriteReplacesPreviousRecord(t *testing.T) {
	store, records := newServerStore(t)

	first := httptest.NewRecorder()
	if err := store.Write(first, httptest.NewRequest(http.MethodPost, "/login", nil), "tok-1"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	oldCookie := sessionCookieFrom(t, first)

	req := httptest.NewRequest(http.MethodPost, "/verify-2fa", nil)
	req.AddCookie(oldCookie)
	second := httptest.NewRecorder()
	if err := store.Write(second, req, "tok-2"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	newCookie := sessionCookieFrom(t, second)
	if newCookie.Value == oldCookie.Value {
		t.Fatal("session id was not rotated")
	}
	if _, err := records.GetToken(context.Background(), oldCookie.Value); err == nil {
		t.Fatal("previous record survived rotation")
	}
}

func TestServerReadRejectsExpiredToken(t *testing.T) {
	store, _ := newServerStore(t)
	expired := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})

	rr := httptest.NewRecorder()
	if err := store.Write(rr, httptest.NewRequest(http.MethodPost, "/login", nil), expired); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sessionCookieFrom(t, rr))
	if _, ok := store.Read(req); ok {
		t.Fatal("Read() returned an expired token")
	}
}

func TestServerReadUnknownSession(t *testing.T) {
	store, _ := newServerStore(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: uuid.NewString()})
	if _, ok := store.Read(req); ok {
		t.Fatal("Read() resolved an unknown session id")
	}
}

func TestServerClearDeletesRecord(t *testing.T) {
	store, records := newServerStore(t)

	rr := httptest.NewRecorder()
	if err := store.Write(rr, httptest.NewRequest(http.MethodPost, "/login", nil), "tok-1"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	cookie := sessionCookieFrom(t, rr)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	clearRR := httptest.NewRecorder()
	if err := store.Clear(clearRR, req); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := sessionCookieFrom(t, clearRR); got.MaxAge >= 0 {
		t.Fatalf("MaxAge = %d, want expired", got.MaxAge)
	}
	if _, err := records.GetToken(context.Background(), cookie.Value); err == nil {
		t.Fatal("record survived Clear()")
	}
}

func TestServerSweep(t *testing.T) {
	store, _ := newServerStore(t)
	soon := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Minute).Unix()})

	if err := store.Write(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil), soon); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	n, err := store.Sweep(context.Background(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
}
