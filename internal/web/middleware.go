package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"collab-todo/internal/model"
)

const userContextKey = "currentUser"

// authRequired resolves the caller from a bearer API token. Token issuance
// happens out of band; the middleware only maps tokens onto accounts.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		user, err := s.userRepo.FindByAPIToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	user, _ := c.MustGet(userContextKey).(*model.User)
	return user
}
