package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/domain"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/logger"
)

// fakeAuthServer mimics the backend auth endpoint: it accepts exactly
// admin/password123 and answers with a decodable bearer token.
func fakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	token := buildToken(t, map[string]interface{}{
		"jti":       "user-1",
		"sub":       "admin",
		"FirstName": "Admin",
		"LastName":  "User",
	})

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/Authorize" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("name") != "admin" || q.Get("pwd") != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	}))
}

func TestManager_LoginSuccess(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()

	store := NewMemoryStore()
	m := NewManager(store, NewHTTPAuthService(srv.URL), logger.Nop())

	user, err := m.Login(context.Background(), "admin", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.IsDemo {
		t.Error("login must produce a non-demo user")
	}
	if user.Username != "admin" || user.Name != "Admin User" {
		t.Errorf("unexpected user: %+v", user)
	}

	persisted, _ := store.Read()
	if persisted == "" {
		t.Error("expected credential persisted after login")
	}
}

func TestManager_LoginWrongPassword(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()

	store := NewMemoryStore()
	m := NewManager(store, NewHTTPAuthService(srv.URL), logger.Nop())

	user, err := m.Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if user != nil {
		t.Error("expected nil user on auth failure")
	}
	if persisted, _ := store.Read(); persisted != "" {
		t.Error("no credential must be persisted on auth failure")
	}
}

func TestManager_RestoreRoundTrip(t *testing.T) {
	srv := fakeAuthServer(t)
	defer srv.Close()

	store := NewFileStore(filepath.Join(t.TempDir(), "token"))
	m := NewManager(store, NewHTTPAuthService(srv.URL), logger.Nop())

	// Anonymous before login.
	if u := m.Restore(); u != nil {
		t.Fatalf("expected anonymous restore, got %+v", u)
	}

	if _, err := m.Login(context.Background(), "admin", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	restored := m.Restore()
	if restored == nil {
		t.Fatal("expected restored user after login")
	}
	if restored.Username != "admin" {
		t.Errorf("restored username = %q", restored.Username)
	}

	if err := m.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if u := m.Restore(); u != nil {
		t.Error("expected anonymous restore after logout")
	}
}

func TestManager_RestoreMalformedCredential(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Write("not-a-credential")
	m := NewManager(store, nil, logger.Nop())

	if u := m.Restore(); u != nil {
		t.Errorf("malformed credential must restore as anonymous, got %+v", u)
	}
}
