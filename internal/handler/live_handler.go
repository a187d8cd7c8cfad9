package handler

import (
	"effisense-go/internal/live"
	"effisense-go/internal/middleware"
	"effisense-go/pkg/log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// LiveHandler upgrades authenticated sessions onto the live-update hub.
type LiveHandler struct {
	hub      *live.Hub
	upgrader websocket.Upgrader
}

// NewLiveHandler creates a LiveHandler. Cross-origin upgrades are refused.
func NewLiveHandler(hub *live.Hub) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
	}
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// Handle runs until the client disconnects or the hub shuts down.
func (h *LiveHandler) Handle(c *gin.Context) {
	user := middleware.CurrentUser(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnw("live: websocket upgrade failed", "userId", user.ID, "error", err)
		return
	}
	live.NewClient(h.hub, conn, user.ID).Start()
}
