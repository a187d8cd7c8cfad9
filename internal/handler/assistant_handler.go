package handler

import (
	"effisense-go/internal/middleware"
	"effisense-go/internal/service"
	"effisense-go/pkg/log"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxQuestionBytes = 8 << 10

// AssistantHandler serves the dashboard chat.
type AssistantHandler struct {
	assistant service.AssistantService
}

// NewAssistantHandler creates an AssistantHandler.
func NewAssistantHandler(assistant service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// GetDashboardSuggestion answers one question. The body is a JSON string, a JSON object
// with a "prompt" or "question" field, or plain text.
func (h *AssistantHandler) GetDashboardSuggestion(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxQuestionBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Prompt could not be read."})
		return
	}
	if len(body) > maxQuestionBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "message": "Prompt is too long."})
		return
	}
	question := parseQuestion(body)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Prompt cannot be empty."})
		return
	}

	user := middleware.CurrentUser(c)
	suggestion, err := h.assistant.Ask(c.Request.Context(), user.ID, question)
	if err != nil {
		if _, ok := service.IsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Prompt cannot be empty."})
			return
		}
		log.Errorw("assistant exchange failed", "userId", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error saving chat messages."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "suggestion": suggestion})
}

func parseQuestion(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	var asString string
	if err := json.Unmarshal([]byte(trimmed), &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asObject struct {
		Prompt   string `json:"prompt"`
		Question string `json:"question"`
	}
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), &asObject); err == nil {
			if asObject.Prompt != "" {
				return strings.TrimSpace(asObject.Prompt)
			}
			return strings.TrimSpace(asObject.Question)
		}
	}
	return trimmed
}

// GetChatHistory returns the latest messages, oldest first.
func (h *AssistantHandler) GetChatHistory(c *gin.Context) {
	history, err := h.assistant.History(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
