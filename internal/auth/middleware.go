package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenScheme is the Authorization header keyword.
const TokenScheme = "Token"

// TokenValidator resolves a token key to its owner.
type TokenValidator interface {
	ValidateToken(key string) (Identity, error)
}

// Middleware rejects requests that do not carry a valid token.
type Middleware struct {
	validator TokenValidator
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(validator TokenValidator) *Middleware {
	return &Middleware{validator: validator}
}

// Handler returns a Gin middleware that resolves the caller or aborts with 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, problem := tokenFromHeader(c.GetHeader("Authorization"))
		if problem != "" {
			unauthorized(c, problem)
			return
		}

		identity, err := m.validator.ValidateToken(key)
		switch {
		case err == nil:
		case errors.Is(err, ErrTokenExpired):
			unauthorized(c, "Token has expired.")
			return
		case errors.Is(err, ErrInvalidToken):
			unauthorized(c, "Invalid token.")
			return
		default:
			log.Printf("Token validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

// tokenFromHeader extracts the key from "Token <key>". The keyword is
// case-insensitive. A non-empty problem describes why the header is unusable.
func tokenFromHeader(header string) (key, problem string) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], TokenScheme) {
		return "", "Authentication credentials were not provided."
	}
	switch len(parts) {
	case 1:
		return "", "Invalid token header. No credentials provided."
	case 2:
		return parts[1], ""
	default:
		return "", "Invalid token header. Token string should not contain spaces."
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", TokenScheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
