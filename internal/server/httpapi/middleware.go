package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mberzonis/carelink/internal/server/auth"
)

const ownerKey = "owner"

// authRequired extracts the owner ID from the Authorization bearer token.
// Requests without a valid token are rejected before reaching a handler.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		owner, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ownerKey, owner)
		c.Next()
	}
}

func ownerFromContext(c *gin.Context) string {
	return c.GetString(ownerKey)
}
