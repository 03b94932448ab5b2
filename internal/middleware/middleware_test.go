package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/apperrors"
	"github.com/legalcms/backend/internal/models"
	"github.com/legalcms/backend/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	issuer  *session.Issuer
	revoked map[string]bool
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (session.Claims, error) {
	claims, err := f.issuer.Parse(token)
	if err != nil {
		return session.Claims{}, apperrors.Unauthorized("Invalid token")
	}
	if f.revoked[claims.TokenID] {
		return session.Claims{}, apperrors.Unauthorized("Token has been revoked")
	}
	return claims, nil
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	issuer := session.NewIssuer("secret", time.Hour)
	auth := fakeAuth{issuer: issuer, revoked: map[string]bool{}}

	staff := models.User{ID: "u-staff", Role: models.RoleStaff, Email: "s@firm.test"}
	staffToken, _, err := issuer.Issue(staff)
	if err != nil {
		t.Fatal(err)
	}
	client := models.User{ID: "u-client", Role: models.RoleClient, Email: "c@firm.test"}
	clientToken, clientClaims, err := issuer.Issue(client)
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.Use(AuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		actor := CurrentActor(c)
		claims, _ := CurrentClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role, "email": claims.Email})
	})
	r.GET("/practice", RequirePractitioner(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		path     string
		header   string
		status   int
		errorMsg string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, "Authorization header required"},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized, "Invalid token"},
		{"valid", "/me", "Bearer " + staffToken, http.StatusOK, ""},
		{"staff on practitioner route", "/practice", "Bearer " + staffToken, http.StatusNoContent, ""},
		{"client on practitioner route", "/practice", "Bearer " + clientToken, http.StatusForbidden, "Insufficient permissions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.errorMsg != "" && errorBody(t, w) != tt.errorMsg {
				t.Errorf("error = %q, want %q", errorBody(t, w), tt.errorMsg)
			}
		})
	}

	auth.revoked[clientClaims.TokenID] = true
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status = %d, want 401", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 2)
	r := gin.New()
	r.Use(RateLimit(rl))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests && errorBody(t, w) != "Too many requests" {
			t.Errorf("unexpected 429 body %s", w.Body.String())
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [200 200 429]", codes)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client should have its own bucket, got %d", w.Code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 1)
	rl.Allow("a")
	rl.mu.Lock()
	rl.visitors["a"].seen = time.Now().Add(-time.Hour)
	rl.mu.Unlock()
	rl.Allow("b")

	rl.sweep(3 * time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["a"]; ok {
		t.Error("stale visitor not swept")
	}
	if _, ok := rl.visitors["b"]; !ok {
		t.Error("fresh visitor swept")
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(RequestIDHeader)
	if id == "" || w.Body.String() != id {
		t.Fatalf("request id header %q, body %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "given-id" {
		t.Errorf("incoming request id not propagated")
	}
}
