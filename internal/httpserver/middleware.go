package httpserver

import (
	"net/http"
	"strings"

	"plugdrop/internal/domain"
	"plugdrop/internal/service/auth"

	"github.com/gin-gonic/gin"
)

const userContextKey = "plugdrop.user"
const tokenContextKey = "plugdrop.token"

// authRequired resolves the bearer token and parks the account on the
// request context. Requests without a valid token stop here with 401.
func authRequired(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		u, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(userContextKey, *u)
		c.Set(tokenContextKey, token)
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	u, _ := c.Get(userContextKey)
	user, _ := u.(domain.User)
	return user
}

func currentToken(c *gin.Context) string {
	t, _ := c.Get(tokenContextKey)
	token, _ := t.(string)
	return token
}
