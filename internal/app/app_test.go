package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/manager/internal/config"
	"github.com/simp-lee/manager/internal/pkg"
)

type fakeHTTPServer struct {
	listenErr      error
	listenStarted  chan struct{}
	shutdownCalled bool
	stopCh         chan struct{}
	mu             sync.Mutex
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenStarted != nil {
		close(f.listenStarted)
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	if f.stopCh != nil {
		<-f.stopCh
	}
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.mu.Lock()
	f.shutdownCalled = true
	f.mu.Unlock()
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *fakeHTTPServer) wasShutdownCalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownCalled
}

func testConfig(t *testing.T, mode string) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Mode: mode,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "app-test.db")},
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: config.AuthConfig{
			Login:       "admin",
			Password:    "s3cret-admin",
			JWTSecret:   "test-secret-key-must-be-at-least-32-chars-long!",
			TokenExpiry: "1h",
		},
		Crypto: config.CryptoConfig{
			Secret: "test-crypto-secret",
		},
	}
}

func cleanupTestApp(t *testing.T, a *App) {
	t.Helper()
	if a == nil {
		return
	}
	if a.db != nil {
		sqlDB, dbErr := a.db.DB()
		if dbErr == nil {
			_ = sqlDB.Close()
		}
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func TestResolveCORSConfig(t *testing.T) {
	tests := []struct {
		name            string
		mode            string
		corsCfg         *config.CORSConfig
		wantOrigins     []string
		wantCredentials bool
		wantMaxAge      string
	}{
		{
			name:        "debug mode uses permissive default when not configured",
			mode:        gin.DebugMode,
			corsCfg:     &config.CORSConfig{},
			wantOrigins: []string{"*"},
			wantMaxAge:  "86400",
		},
		{
			name:        "release mode denies cross-origin when not configured",
			mode:        gin.ReleaseMode,
			corsCfg:     &config.CORSConfig{},
			wantOrigins: []string{},
			wantMaxAge:  "86400",
		},
		{
			name: "release mode uses explicit allowlist",
			mode: gin.ReleaseMode,
			corsCfg: &config.CORSConfig{
				AllowOrigins: []string{"https://admin.example.com"},
			},
			wantOrigins: []string{"https://admin.example.com"},
			wantMaxAge:  "86400",
		},
		{
			name: "credentials and max age are carried over",
			mode: gin.ReleaseMode,
			corsCfg: &config.CORSConfig{
				AllowOrigins:     []string{"https://example.com"},
				AllowCredentials: true,
				MaxAge:           "12h",
			},
			wantOrigins:     []string{"https://example.com"},
			wantCredentials: true,
			wantMaxAge:      "43200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCORSConfig(tt.mode, tt.corsCfg)

			if len(got.AllowOrigins) != len(tt.wantOrigins) {
				t.Fatalf("AllowOrigins = %v, want %v", got.AllowOrigins, tt.wantOrigins)
			}
			for i := range tt.wantOrigins {
				if got.AllowOrigins[i] != tt.wantOrigins[i] {
					t.Fatalf("AllowOrigins[%d] = %q, want %q", i, got.AllowOrigins[i], tt.wantOrigins[i])
				}
			}
			if got.AllowCredentials != tt.wantCredentials {
				t.Errorf("AllowCredentials = %v, want %v", got.AllowCredentials, tt.wantCredentials)
			}
			if got.MaxAge != tt.wantMaxAge {
				t.Errorf("MaxAge = %q, want %q", got.MaxAge, tt.wantMaxAge)
			}
		})
	}
}

func TestValidateGinMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr bool
	}{
		{name: "debug mode", mode: gin.DebugMode, wantErr: false},
		{name: "release mode", mode: gin.ReleaseMode, wantErr: false},
		{name: "test mode", mode: gin.TestMode, wantErr: false},
		{name: "invalid mode", mode: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGinMode(tt.mode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateGinMode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	app, err := New(nil)
	if err == nil {
		t.Fatal("New(nil) error = nil, want error")
	}
	if app != nil {
		t.Fatalf("New(nil) app = %#v, want nil", app)
	}
}

func TestNew_ReturnsError_WhenDatabaseSetupFails(t *testing.T) {
	cfg := testConfig(t, gin.TestMode)
	cfg.Database.Driver = "unsupported"

	app, err := New(cfg)
	if err == nil {
		t.Fatal("New() error = nil, want error")
	}
	if app != nil {
		t.Fatalf("New() app = %#v, want nil", app)
	}
	if !strings.Contains(err.Error(), "setup database") {
		t.Fatalf("New() error = %q, want contains %q", err.Error(), "setup database")
	}
}

func TestNew_ReturnsError_WhenCryptoSecretEmpty(t *testing.T) {
	cfg := testConfig(t, gin.TestMode)
	cfg.Crypto.Secret = ""

	_, err := New(cfg)
	if err == nil || !strings.Contains(err.Error(), "setup crypto") {
		t.Fatalf("New() error = %v, want contains %q", err, "setup crypto")
	}
}

func TestNew_ReturnsError_WhenJWTSecretEmpty(t *testing.T) {
	cfg := testConfig(t, gin.TestMode)
	cfg.Auth.JWTSecret = ""

	_, err := New(cfg)
	if err == nil || !strings.Contains(err.Error(), "setup token manager") {
		t.Fatalf("New() error = %v, want contains %q", err, "setup token manager")
	}
}

func TestNew_ProtectedRoutesRequireToken(t *testing.T) {
	app, err := New(testConfig(t, gin.TestMode))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cleanupTestApp(t, app)

	// User routes must return 401 without an Authorization header.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	app.engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/v1/users without token: status = %d, want 401", w.Code)
	}

	// The login route stays public.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	app.engine.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("POST /api/v1/auth/login should not return 401")
	}
}

func TestNew_LoginThenManageUsers(t *testing.T) {
	// Debug mode so AutoMigrate creates the users table.
	app, err := New(testConfig(t, gin.DebugMode))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cleanupTestApp(t, app)

	// 1. Login with the configured credentials.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"login":"admin","password":"s3cret-admin"}`))
	req.Header.Set("Content-Type", "application/json")
	app.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Data.Token == "" {
		t.Fatal("login response missing token")
	}
	bearer := "Bearer " + loginResp.Data.Token

	// 2. Create a user through the protected API.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users",
		strings.NewReader(`{"name":"Alice","email":"alice@example.com","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer)
	app.engine.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user status = %d, body = %s", w.Code, w.Body.String())
	}

	// 3. List users and check the created one is there without its password.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", bearer)
	app.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list users status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "alice@example.com") {
		t.Errorf("user list missing created user: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "hunter22") {
		t.Error("user list leaked a password")
	}
}

func TestNew_HealthAndNoRoute(t *testing.T) {
	app, err := New(testConfig(t, gin.TestMode))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cleanupTestApp(t, app)

	t.Run("health reports ok", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("health status = %d, body = %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"status":"ok"`) {
			t.Errorf("health body = %s", w.Body.String())
		}
	})

	t.Run("unknown path returns json 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
		var resp pkg.Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode 404 body: %v", err)
		}
		if resp.Message != "not found" {
			t.Errorf("message = %q, want %q", resp.Message, "not found")
		}
	})
}

func TestAutoMigrate_DoesNotRunOutsideDebug(t *testing.T) {
	app, err := New(testConfig(t, gin.TestMode))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer cleanupTestApp(t, app)

	var userTableCount int
	if err := app.db.Raw("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'").Scan(&userTableCount).Error; err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if userTableCount != 0 {
		t.Fatalf("expected users table to be absent outside debug mode, count=%d", userTableCount)
	}
}

func TestRun_ReturnsError_WhenListenFails(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	listenErr := errors.New("listen failed")
	server := &fakeHTTPServer{listenErr: listenErr}
	newHTTPServer = func(string, http.Handler) httpServer {
		return server
	}
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}

	a := &App{
		engine: gin.New(),
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	err := a.Run()
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if !errors.Is(err, listenErr) {
		t.Fatalf("Run() error = %v, want wraps %v", err, listenErr)
	}
}

func TestRun_ShutdownSignal_ClosesDatabase(t *testing.T) {
	originalNewHTTPServer := newHTTPServer
	originalNotifyContext := notifyContext
	defer func() {
		newHTTPServer = originalNewHTTPServer
		notifyContext = originalNotifyContext
	}()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "run.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}

	server := &fakeHTTPServer{listenStarted: make(chan struct{}), stopCh: make(chan struct{})}
	newHTTPServer = func(string, http.Handler) httpServer {
		return server
	}

	ctx, cancel := context.WithCancel(context.Background())
	notifyContext = func(context.Context, ...os.Signal) (context.Context, context.CancelFunc) {
		return ctx, cancel
	}

	a := &App{
		engine: gin.New(),
		db:     db,
		logger: logger.Default(),
		cfg:    &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080}},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	select {
	case <-server.listenStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start listening in time")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return in time after shutdown signal")
	}

	if !server.wasShutdownCalled() {
		t.Fatal("expected server Shutdown() to be called")
	}

	if pingErr := sqlDB.Ping(); pingErr == nil {
		t.Fatal("expected database connection to be closed, but Ping() succeeded")
	}
}
