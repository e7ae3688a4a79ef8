package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newJSONContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "10.0.0.9:40312"
	return c
}

func TestKeyByIPAndJSONFieldNormalizes(t *testing.T) {
	c := newJSONContext(t, `{"code":" Hemat-Maret "}`)

	key := KeyByIPAndJSONField("code")(c)
	if key != "hemat-maret|10.0.0.9" {
		t.Fatalf("key want hemat-maret|10.0.0.9 got %s", key)
	}

	// 取完字段后 body 必须可被后续 handler 重新读取
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Hemat-Maret") {
		t.Fatalf("request body should be restored, got %s", string(body))
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	c := newJSONContext(t, `{"other":"x"}`)
	if key := KeyByIPAndJSONField("code")(c); key != "10.0.0.9" {
		t.Fatalf("missing field should fall back to ip, got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClientPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{Prefix: "test", WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// Redis 不可用时限流直接放行
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass through, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(7), want: 7, ok: true},
		{name: "int", input: int(8), want: 8, ok: true},
		{name: "uint16", input: uint16(9), want: 9, ok: true},
		{name: "float64 truncates", input: float64(10.6), want: 10, ok: true},
		{name: "string rejected", input: "10", want: 0, ok: false},
		{name: "nil rejected", input: nil, want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("want (%d,%v) got (%d,%v)", tc.want, tc.ok, got, ok)
			}
		})
	}
}
