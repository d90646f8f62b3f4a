package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByCartToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout/place-order", nil)
	c.Request.Header.Set("X-Cart-Token", "tok-123")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByCartToken("X-Cart-Token")(c)
	if key != "tok-123|1.2.3.4" {
		t.Fatalf("key want tok-123|1.2.3.4 got %s", key)
	}

	c.Request.Header.Del("X-Cart-Token")
	key = KeyByCartToken("X-Cart-Token")(c)
	if key != "1.2.3.4" {
		t.Fatalf("missing token should fall back to IP, got %s", key)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		input interface{}
		want  int64
		ok    bool
	}{
		{int64(7), 7, true},
		{int(3), 3, true},
		{float64(9), 9, true},
		{uint32(4), 4, true},
		{"nope", 0, false},
	}
	for _, c := range cases {
		got, ok := toInt64(c.input)
		if got != c.want || ok != c.ok {
			t.Errorf("toInt64(%v) = %d,%v want %d,%v", c.input, got, ok, c.want, c.ok)
		}
	}
}
