package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func performRequest(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for key, value := range header {
		req.Header.Set(key, value)
	}
	r.ServeHTTP(w, req)
	return w
}

func bodyStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{name: "wildcard", origin: "https://kosku.id", allowed: []string{"*"}, want: "*"},
		{name: "wildcard with credentials echoes origin", origin: "https://kosku.id", allowed: []string{"*"}, credentials: true, want: "https://kosku.id"},
		{name: "allow list hit", origin: "https://admin.kosku.id", allowed: []string{"https://admin.kosku.id", "https://kosku.id"}, want: "https://admin.kosku.id"},
		{name: "allow list miss", origin: "https://evil.example.com", allowed: []string{"https://kosku.id"}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestRequestIDMiddlewarePropagatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := performRequest(r, http.MethodGet, "/ping", map[string]string{requestIDHeader: "req-melati-1"})
	if w.Header().Get(requestIDHeader) != "req-melati-1" {
		t.Fatalf("response header want req-melati-1 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-melati-1" {
		t.Fatalf("context request id want req-melati-1 got %s", resp["request_id"])
	}
}

func TestRequestIDMiddlewareGenerates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ping", nil)
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request id should be generated when the header is absent")
	}
}

func TestJWTAuthMiddlewareRejections(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newGuarded := func(secret string) *gin.Engine {
		r := gin.New()
		r.Use(JWTAuthMiddleware(secret, nil))
		r.GET("/admin/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("missing secret", func(t *testing.T) {
		w := performRequest(newGuarded(""), http.MethodGet, "/admin/ping",
			map[string]string{"Authorization": "Bearer whatever"})
		if got := bodyStatusCode(t, w); got != 401 {
			t.Fatalf("status_code want 401 got %d", got)
		}
	})

	t.Run("missing auth header", func(t *testing.T) {
		w := performRequest(newGuarded("unit-test-secret-key-not-for-prod"), http.MethodGet, "/admin/ping", nil)
		if got := bodyStatusCode(t, w); got != 401 {
			t.Fatalf("status_code want 401 got %d", got)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		w := performRequest(newGuarded("unit-test-secret-key-not-for-prod"), http.MethodGet, "/admin/ping",
			map[string]string{"Authorization": "Bearer not.a.jwt"})
		if got := bodyStatusCode(t, w); got != 401 {
			t.Fatalf("status_code want 401 got %d", got)
		}
	})
}
