package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeValidator struct {
	tokens map[string]Identity
	err    error
}

func (f *fakeValidator) ValidateToken(key string) (Identity, error) {
	if f.err != nil {
		return Identity{}, f.err
	}
	identity, ok := f.tokens[key]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return identity, nil
}

func setupRouter(v TokenValidator) *gin.Engine {
	router := gin.New()
	router.Use(NewMiddleware(v).Handler())
	router.GET("/whoami", func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "username": identity.Username})
	})
	return router
}

func TestMiddleware_Handler(t *testing.T) {
	validator := &fakeValidator{tokens: map[string]Identity{
		"abc123": {UserID: 7, Username: "reader", Email: "reader@example.com"},
	}}
	router := setupRouter(validator)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "valid token", header: "Token abc123", wantStatus: http.StatusOK},
		{name: "lowercase keyword", header: "token abc123", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantError: "Authentication credentials were not provided."},
		{name: "bearer scheme", header: "Bearer abc123", wantStatus: http.StatusUnauthorized, wantError: "Authentication credentials were not provided."},
		{name: "keyword only", header: "Token", wantStatus: http.StatusUnauthorized, wantError: "Invalid token header. No credentials provided."},
		{name: "spaces in token", header: "Token abc 123", wantStatus: http.StatusUnauthorized, wantError: "Invalid token header. Token string should not contain spaces."},
		{name: "unknown token", header: "Token nope", wantStatus: http.StatusUnauthorized, wantError: "Invalid token."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantError == "" {
				return
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", body["error"], tt.wantError)
			}
			if w.Header().Get("WWW-Authenticate") != "Token" {
				t.Error("401 should advertise the Token scheme")
			}
		})
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	router := setupRouter(&fakeValidator{err: ErrTokenExpired})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMiddleware_ValidatorFailure(t *testing.T) {
	router := setupRouter(&fakeValidator{err: errors.New("database locked")})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(), NoStoreMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}
	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}
