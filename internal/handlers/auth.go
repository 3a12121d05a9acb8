package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
)

type AuthHandler struct {
	store      services.SessionStore
	jwtService *services.JWTService
}

func NewAuthHandler(store services.SessionStore, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{
		store:      store,
		jwtService: jwtService,
	}
}

// Guest issues a fresh player identity and its token. The body is optional;
// it may carry a display name.
func (h *AuthHandler) Guest(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	_ = c.ShouldBindJSON(&req)

	player := &models.Player{
		ID:          models.GeneratePlayerID(),
		DisplayName: req.DisplayName,
		CreatedAt:   time.Now(),
	}

	if err := h.store.SavePlayer(player); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create player",
			"details": err.Error(),
		})
		return
	}

	token, err := h.jwtService.GenerateToken(player.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"player":  player,
	})
}

func (h *AuthHandler) GetCurrentPlayer(c *gin.Context) {
	playerID := c.GetString("player_id")

	player, err := h.store.GetPlayer(playerID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Player expired or unknown"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get player"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"player":  player,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	playerID := c.GetString("player_id")

	if err := h.store.DeletePlayer(playerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
