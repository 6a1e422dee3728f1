package http

import (
	"context"
	"database/sql"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-admin/internal/analytics"
	"github.com/vovakirdan/wirechat-admin/internal/auth"
	"github.com/vovakirdan/wirechat-admin/internal/config"
	"github.com/vovakirdan/wirechat-admin/internal/presence"
	"github.com/vovakirdan/wirechat-admin/internal/store"
	"github.com/vovakirdan/wirechat-admin/internal/store/sqlite"
)

const testJWTSecret = "test-secret"

// createTestStore creates an in-memory SQLite store, optionally seeded.
func createTestStore(t *testing.T, seed string) store.Store {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		if seed == "" {
			return nil
		}
		_, err := db.Exec(seed)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(testJWTSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

type testEnv struct {
	ts      *httptest.Server
	store   store.Store
	hub     *presence.Hub
	counter *presence.Counter
	auth    *auth.Service
}

// newTestEnv builds a full server over an in-memory store.
func newTestEnv(t *testing.T, seed string) *testEnv {
	t.Helper()

	st := createTestStore(t, seed)
	authService := createTestAuthService(t, st)

	hub := presence.NewHub(nil)
	counter := presence.NewCounter(hub.Subscribe())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go counter.Run(ctx)

	svc := analytics.New(st, hub, time.Second, nil)

	disabledLogger := zerolog.Nop()
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = testJWTSecret

	server := NewServer(hub, counter, svc, authService, st, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:      ts,
		store:   st,
		hub:     hub,
		counter: counter,
		auth:    authService,
	}
}

// adminToken provisions an admin and returns a valid bearer token.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()

	if _, err := e.auth.CreateAdmin(context.Background(), "root", "Root Admin", "password123"); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	token, err := e.auth.Login(context.Background(), "root", "password123")
	if err != nil {
		t.Fatalf("failed to login admin: %v", err)
	}
	return token
}

// get issues an authenticated GET against the test server.
func (e *testEnv) get(t *testing.T, path, token string) *stdhttp.Response {
	t.Helper()

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, e.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}
