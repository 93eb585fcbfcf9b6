package auth

import "github.com/gin-gonic/gin"

const contextKeyIdentity = "auth_identity"

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   uint
	Username string
	Email    string
}

// SetIdentity stores the caller in the Gin context.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(contextKeyIdentity, identity)
}

// GetIdentity returns the caller resolved by the middleware.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(contextKeyIdentity)
	if !exists {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}
