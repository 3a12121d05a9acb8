package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"minesweeper-backend/internal/minesweeper"
	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
}

func NewGameHandler(gameEngine *services.GameEngine) *GameHandler {
	return &GameHandler{gameEngine: gameEngine}
}

func (h *GameHandler) GetPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"presets": models.Presets(),
	})
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	playerID := c.GetString("player_id")

	var req models.NewGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	session, err := h.gameEngine.CreateGame(c.Request.Context(), playerID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to create game",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"game":    session,
	})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	playerID := c.GetString("player_id")
	gameID := c.Param("id")

	session, err := h.gameEngine.GetGame(playerID, gameID)
	if err != nil {
		h.gameError(c, err)
		return
	}

	resp := gin.H{
		"success": true,
		"game":    session,
	}
	if session.Status == models.GameStatusActive {
		if view, err := h.gameEngine.GameView(playerID, gameID); err == nil {
			resp["board"] = view
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *GameHandler) Reveal(c *gin.Context) {
	playerID := c.GetString("player_id")
	gameID := c.Param("id")

	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.gameEngine.Reveal(c.Request.Context(), playerID, gameID, req.Row, req.Col)
	if err != nil {
		h.gameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) ToggleFlag(c *gin.Context) {
	playerID := c.GetString("player_id")
	gameID := c.Param("id")

	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	result, err := h.gameEngine.ToggleFlag(c.Request.Context(), playerID, gameID, req.Row, req.Col)
	if err != nil {
		h.gameError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *GameHandler) GetActiveGames(c *gin.Context) {
	playerID := c.GetString("player_id")

	games, err := h.gameEngine.GetPlayerActiveGames(playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch active games",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   games,
	})
}

func (h *GameHandler) GetGameHistory(c *gin.Context) {
	playerID := c.GetString("player_id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	games, err := h.gameEngine.GetPlayerHistory(playerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch game history",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   games,
	})
}

func (h *GameHandler) gameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, services.ErrNotYourGame):
		c.JSON(http.StatusForbidden, gin.H{"error": "Game belongs to another player"})
	case errors.Is(err, services.ErrGameEnded):
		c.JSON(http.StatusConflict, gin.H{"error": "Game already ended"})
	case errors.Is(err, minesweeper.ErrOutOfBounds):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Coordinate outside the board",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}
