package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKey guards administrative routes with a static key. An unset key
// locks the routes entirely rather than leaving them open.
func AdminKey(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Admin-Key")
		if required == "" || key != required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid admin key",
				},
			})
			return
		}
		c.Next()
	}
}
