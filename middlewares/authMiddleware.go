package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/utils"
)

// AuthMiddleware reads "Authorization: Bearer <access token>" and puts the
// user into the request context. Requests without the header pass through.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		claim, err := utils.ParseToken(auth, utils.TokenTypeAccess)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(utils.SetUserIdInContext(c.Request.Context(), claim.ID))
		c.Next()
	}
}

// RequireUser rejects requests that carry no authenticated user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := utils.RequireUserId(c.Request.Context()); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
