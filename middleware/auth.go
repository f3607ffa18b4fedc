package middleware

import (
	"net/http"
	"strings"

	"serviq/utils"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated actor.
const (
	CtxActorID   = "actorID"
	CtxActorRole = "actorRole"
)

// JWTAuthMiddleware validates the bearer token and stores the actor's
// id and role on the request context. Token issuance is owned by the
// auth service; this only validates.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}
		claims, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(CtxActorID, claims.Subject)
		c.Set(CtxActorRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxActorRole)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}
