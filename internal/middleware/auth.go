// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"effisense-go/pkg/log"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "effisense_token"

// ContextUserKey is the gin context key holding the *model.User.
const ContextUserKey = "user"

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/Account/Login"

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// WantsJSON reports whether the client expects a JSON answer rather than a page.
func WantsJSON(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// AuthMiddleware resolves the session token to a user and stores it under ContextUserKey.
// Browsers without a valid session are redirected to the login page; API clients get 401.
func AuthMiddleware(userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			challenge(c)
			return
		}

		user, err := userService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidCredentials) {
				log.Error("auth: failed to resolve session", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			challenge(c)
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func challenge(c *gin.Context) {
	if WantsJSON(c) || c.Request.Method != http.MethodGet {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated."})
		return
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, LoginPath+"?ReturnUrl="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
