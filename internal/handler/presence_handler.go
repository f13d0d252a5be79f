package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/parsa-dv/messenger/internal/pkg/response"
	"github.com/parsa-dv/messenger/internal/presence"
)

type PresenceHandler struct {
	tracker *presence.Tracker
}

func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

type typingRequest struct {
	To int64 `json:"to"`
}

// Typing records a best-effort typing signal toward the recipient. Repeated
// calls just refresh the timestamp; there is nothing to rate limit here.
func (h *PresenceHandler) Typing(c *gin.Context) {
	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == 0 {
		response.Error(c, 400, "Recipient required")
		return
	}
	h.tracker.Notify(getUserID(c), req.To)
	response.Success(c, nil)
}
