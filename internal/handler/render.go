package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/service"
	"effisense-go/pkg/log"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// page renders a full HTML page; data gains Title and User for the layout.
func page(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["User"] = middleware.CurrentUser(c)
	c.HTML(status, name, data)
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	if _, ok := service.IsValidation(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var statusMessages = map[int]string{
	http.StatusNotFound:            "The requested item could not be found.",
	http.StatusForbidden:           "You are not allowed to access this item.",
	http.StatusUnprocessableEntity: "Some fields are invalid.",
	http.StatusUnauthorized:        "User not authenticated.",
	http.StatusConflict:            "The item already exists.",
}

// abortWithError answers err as JSON for API clients or as the error page for browsers.
func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)
	message, ok := statusMessages[status]
	if !ok {
		message = "An unexpected error occurred while processing your request."
	}
	if status >= http.StatusInternalServerError {
		log.Errorw("request failed", "path", c.Request.URL.Path, "requestId", c.GetString("requestId"), "error", err)
	} else {
		log.Warnw("request rejected", "path", c.Request.URL.Path, "status", status, "error", err)
	}
	_ = c.Error(err)

	if middleware.WantsJSON(c) {
		body := gin.H{"success": false, "message": message}
		if verr, ok := service.IsValidation(err); ok {
			body["errors"] = verr.Fields
		}
		c.AbortWithStatusJSON(status, body)
		return
	}
	page(c, status, "error", "Error", gin.H{
		"Status":    status,
		"Message":   message,
		"RequestID": c.GetString("requestId"),
	})
	c.Abort()
}

// idParam reads the :id path segment. A missing or malformed id is reported as not found.
func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// pageNumber reads ?pageNumber, defaulting to fallback.
func pageNumber(c *gin.Context, fallback int) int {
	n, err := strconv.Atoi(c.Query("pageNumber"))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// loadMore writes the X-HasMoreItems header and the partial for one further page.
func loadMore(c *gin.Context, partial string, items interface{}, count int, hasMore bool) {
	c.Header("X-HasMoreItems", strconv.FormatBool(hasMore))
	if count == 0 {
		c.String(http.StatusOK, "")
		return
	}
	c.HTML(http.StatusOK, partial, gin.H{"Items": items})
}

// formFailed re-renders a form with field messages for validation errors and falls back to abortWithError.
func formFailed(c *gin.Context, err error, redisplay func(fields map[string]string)) {
	verr, ok := service.IsValidation(err)
	if !ok || middleware.WantsJSON(c) {
		abortWithError(c, err)
		return
	}
	redisplay(verr.Fields)
}
