package models

import "time"

type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusWon       GameStatus = "won"
	GameStatusLost      GameStatus = "lost"
	GameStatusAbandoned GameStatus = "abandoned"
)

// Terminal reports whether the session can accept further moves.
func (s GameStatus) Terminal() bool {
	return s != GameStatusActive
}

// GameSession is the stored record of one minesweeper game. The live board
// lives in the engine's memory; this record is what the store keeps for
// listing, ownership checks and history.
type GameSession struct {
	ID       string `json:"id" redis:"id"`
	PlayerID string `json:"player_id" redis:"player_id"`

	Rows   int    `json:"rows" redis:"rows"`
	Cols   int    `json:"cols" redis:"cols"`
	Mines  int    `json:"mines" redis:"mines"`
	Preset string `json:"preset,omitempty" redis:"preset"`

	Status        GameStatus `json:"status" redis:"status"`
	SafeRemaining int        `json:"safe_remaining" redis:"safe_remaining"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
	EndedAt   time.Time `json:"ended_at,omitzero" redis:"ended_at"`
}
