package middleware

import (
	"effisense-go/internal/model"
	"effisense-go/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware lets only ADMIN users through. Mount it behind AuthMiddleware.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		switch {
		case user == nil:
			log.Errorw("admin route reached without an authenticated user", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "user missing from request context"})
		case user.Role != model.RoleAdmin:
			log.Warnw("admin route refused", "userId", user.ID, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "administrator role required"})
		default:
			c.Next()
		}
	}
}
