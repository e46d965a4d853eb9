package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func TestLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"2xx logs info", http.StatusOK, "level=INFO"},
		{"4xx logs warn", http.StatusNotFound, "level=WARN"},
		{"5xx logs error", http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newTestLogger()

			r := gin.New()
			r.Use(Logger(log))
			r.GET("/ping", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

			out := buf.String()
			if !strings.Contains(out, tt.wantLevel) {
				t.Errorf("log output missing %q:\n%s", tt.wantLevel, out)
			}
			if !strings.Contains(out, "path=/ping") {
				t.Errorf("log output missing path:\n%s", out)
			}
			if !strings.Contains(out, "method=GET") {
				t.Errorf("log output missing method:\n%s", out)
			}
		})
	}
}

func TestLogger_IncludesQueryString(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, buf := newTestLogger()

	r := gin.New()
	r.Use(Logger(log))
	r.GET("/search", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?q=ann", nil))

	if !strings.Contains(buf.String(), "path=/search?q=ann") {
		t.Errorf("log output missing query string:\n%s", buf.String())
	}
}

func TestLogger_NilLoggerUsesDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Logger(nil))
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Must not panic.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
}
