package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// UserRateLimiter hands out one token bucket per user.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewUserRateLimiter allows perMinute requests per user with the given burst.
func NewUserRateLimiter(perMinute float64, burst int) *UserRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters: make(map[uint]*rate.Limiter),
		limit:    rate.Every(time.Duration(float64(time.Minute) / perMinute)),
		burst:    burst,
	}
}

// Allow reports whether userID may make another request now.
func (l *UserRateLimiter) Allow(userID uint) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// Middleware answers 429 once the current user's bucket is empty. It must run after AuthMiddleware.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil && !l.Allow(user.ID) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many questions, please wait a moment."})
			return
		}
		c.Next()
	}
}
