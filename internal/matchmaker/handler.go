package matchmaker

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /match/join  body: {pool}
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	identity := c.GetString("identity")
	room, queued, err := h.svc.Join(c.Request.Context(), identity, req.Pool)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if queued {
		c.JSON(http.StatusOK, JoinResponse{Queued: true, Pool: req.Pool})
		return
	}
	c.JSON(http.StatusOK, JoinResponse{
		Queued: false, Pool: room.Pool, RoomID: room.ID, Players: room.Players,
	})
}

// POST /match/cancel
func (h *Handler) Cancel(c *gin.Context) {
	identity := c.GetString("identity")
	if err := h.svc.Cancel(c.Request.Context(), identity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
