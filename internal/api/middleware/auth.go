package middleware

import (
	"net/http"

	"github.com/janmaslov/wishlist/internal/auth"
	"github.com/janmaslov/wishlist/internal/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthRequired verifies the session cookie on every request, not just its
// presence: the token signature and expiry are checked and the claimed
// identity resolved against the user store. Any failure aborts with a generic
// 401 before the handler runs.
func AuthRequired(authService *auth.Service, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		identity, err := authService.ResolveToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the authenticated identity set by AuthRequired.
func IdentityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}
