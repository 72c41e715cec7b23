package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_MasksAndRedacts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.POST("/webhooks/stripe", func(c *gin.Context) { c.Status(http.StatusOK) })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "email a@b.com id=123e4567-e89b-12d3-a456-426614174000 phone 555-123-4567")
	req.Header.Set(requestIDHeader, "rid-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`"path":"/webhooks/stripe"`,
		`"request_id":"rid-1"`,
		`[REDACTED:email]`, `[REDACTED:phone]`, `[REDACTED:id]`,
		`"Authorization":"[REDACTED]"`,
		`"Stripe-Signature":"[REDACTED]"`,
		`"X-Api-Key":"[REDACTED]"`,
		`"X-Custom":"email [REDACTED:email] id=[REDACTED:id] phone [REDACTED:phone]"`,
	} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %s in logs, got: %s", want, logs)
		}
	}
	if strings.Contains(logs, "deadbeef") || strings.Contains(logs, "example.com") {
		t.Fatalf("sensitive value leaked: %s", logs)
	}
}

func TestRedactingLogger_LevelsAndScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("handler line")
		c.Status(http.StatusInternalServerError)
	})

	for path, rid := range map[string]string{"/warn": "rid-warn", "/error": "rid-err"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(requestIDHeader, rid)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn log missing: %s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error log missing: %s", logs)
	}
	// The handler logs through the request-scoped logger.
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line, "handler line") && !strings.Contains(line, `"request_id":"rid-err"`) {
			t.Fatalf("handler log not request-scoped: %s", line)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("mail me at ana@chegaja.pt"); got != "mail me at [REDACTED:email]" {
		t.Fatalf("Redact = %q", got)
	}
	if Redact("") != "" || Redact("prestadorId=p1") != "prestadorId=p1" {
		t.Fatalf("Redact must leave plain values alone")
	}
}
