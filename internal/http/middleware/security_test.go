package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func runSecurity(opt SecurityOptions, pre func(c *gin.Context), prep func(*http.Request)) http.Header {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(func(c *gin.Context) { pre(c); c.Next() })
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if prep != nil {
		prep(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := runSecurity(SecurityOptions{}, nil, nil)
	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security", "Access-Control-Expose-Headers"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_ExposeRequestID(t *testing.T) {
	cases := []struct {
		existing, want string
	}{
		{"", "X-Request-ID"},
		{"Foo", "Foo, X-Request-ID"},
		{"X-Request-ID, Foo", "X-Request-ID, Foo"},
	}
	for _, tc := range cases {
		h := runSecurity(SecurityOptions{}, func(c *gin.Context) {
			c.Header(requestIDHeader, "rid")
			if tc.existing != "" {
				c.Header("Access-Control-Expose-Headers", tc.existing)
			}
		}, nil)
		if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
			t.Fatalf("existing=%q: got %q want %q", tc.existing, got, tc.want)
		}
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}
	want := "max-age=86400; includeSubDomains; preload"

	if got := runSecurity(opt, nil, nil).Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("plain http got HSTS %q", got)
	}
	viaTLS := func(r *http.Request) { r.TLS = &tls.ConnectionState{} }
	if got := runSecurity(opt, nil, viaTLS).Get("Strict-Transport-Security"); got != want {
		t.Fatalf("tls: got %q", got)
	}
	viaProxy := func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }
	if got := runSecurity(opt, nil, viaProxy).Get("Strict-Transport-Security"); got != want {
		t.Fatalf("proxy: got %q", got)
	}
	if got := runSecurity(SecurityOptions{EnableHSTS: true}, nil, viaTLS).Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("default max-age: got %q", got)
	}
}

func TestSecurityHeaders_PolicyAndNoStore(t *testing.T) {
	h := runSecurity(SecurityOptions{EnablePolicy: true, NoStore: true}, nil, nil)
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("missing policy headers: %#v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("missing cache headers: %#v", h)
	}
}

func TestSecurityHeaders_NoStoreForPaymentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	pay := r.Group("/payments", SecurityHeaders(SecurityOptions{NoStore: true}))
	pay.POST("/intent", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"clientSecret": "pi_1_secret"}) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/intent", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("payment responses must not be cached: %#v", w.Header())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("Cache-Control") != "" {
		t.Fatalf("unexpected Cache-Control on health")
	}
}
