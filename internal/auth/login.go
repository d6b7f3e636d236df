package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"Spades/internal/identity"
)

type LoginRequest struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName" binding:"required"`
	AvatarRef   string `json:"avatarRef"`
}

// Handler issues tokens. Credential verification is not this server's
// job; the identity directory is the only account surface it touches.
type Handler struct {
	secret []byte
	dir    *identity.PostgresDirectory
}

func NewHandler(secret []byte, dir *identity.PostgresDirectory) *Handler {
	return &Handler{secret: secret, dir: dir}
}

// Login registers or refreshes a profile and hands back a signed token.
// POST /auth/login {identity?, displayName, avatarRef?}
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if req.Identity == "" {
		req.Identity = uuid.NewString()
	}

	if h.dir != nil {
		p := identity.Profile{ID: req.Identity, DisplayName: req.DisplayName, AvatarRef: req.AvatarRef}
		if err := h.dir.Upsert(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile save failed"})
			return
		}
	}

	token, err := h.sign(req.Identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"identity": req.Identity, "jwt": token})
}

func (h *Handler) sign(identity string) (string, error) {
	claims := jwt.MapClaims{
		"sub": identity,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}
