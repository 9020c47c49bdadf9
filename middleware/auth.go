package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JCrossman/dats-booking-sub000/utils"
)

// OwnerContextKey is where the authenticated owner id lands in the request
// context.
const OwnerContextKey = "ownerID"

// JWTAuthMiddleware validates the bearer token issued at connect time and
// injects the owner id for downstream handlers.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		ownerID, err := utils.ExtractOwnerFromToken(tokenString)
		if err != nil || ownerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set(OwnerContextKey, ownerID)
		c.Next()
	}
}

// OwnerID extracts the authenticated owner from the gin context.
func OwnerID(c *gin.Context) string {
	if v, ok := c.Get(OwnerContextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
