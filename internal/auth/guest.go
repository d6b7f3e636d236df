package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

func generateGuestID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "guest-" + hex.EncodeToString(b), nil
}

// Guest mints a throwaway identity so a player can sit down without an
// account. GET /auth/guest
func (h *Handler) Guest(c *gin.Context) {
	id, err := generateGuestID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate identity"})
		return
	}

	token, err := h.sign(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": id, "jwt": token})
}
