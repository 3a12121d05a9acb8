package services

import "minesweeper-backend/internal/models"

// Broadcaster pushes game lifecycle events to connected clients. The
// WebSocket hub implements it; the engine tolerates having none.
type Broadcaster interface {
	BroadcastGameOver(playerID string, result *models.RevealResponse)
}
