package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/linechat-server/internal/core"
)

// APIHandlers provides read-only HTTP views of the chat state.
type APIHandlers struct {
	hub *core.Hub
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub) *APIHandlers {
	return &APIHandlers{hub: hub}
}

// RosterResponse lists the nicknames of every authorized session.
type RosterResponse struct {
	Users []string `json:"users"`
}

// Roster returns the current roster.
// GET /api/roster
func (h *APIHandlers) Roster(c *gin.Context) {
	users := h.hub.Roster()
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, RosterResponse{Users: users})
}
