package models

import "minesweeper-backend/internal/minesweeper"

// Preset is a named difficulty: the classic fixed board shapes.
type Preset struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Cols  int    `json:"cols"`
	Mines int    `json:"mines"`
}

var presets = []Preset{
	{Name: "easy", Rows: 9, Cols: 9, Mines: 10},
	{Name: "medium", Rows: 16, Cols: 16, Mines: 40},
	{Name: "hard", Rows: 16, Cols: 30, Mines: 99},
}

// Presets lists the difficulty presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// PresetByName looks up a preset; ok is false for unknown names.
func PresetByName(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// NewGameRequest starts a game from either a preset name or custom
// dimensions. Seed, when set, makes mine placement deterministic.
type NewGameRequest struct {
	Preset string `json:"preset,omitempty"`
	Rows   int    `json:"rows,omitempty"`
	Cols   int    `json:"cols,omitempty"`
	Mines  int    `json:"mines,omitempty"`
	Seed   *int64 `json:"seed,omitempty"`
}

type MoveRequest struct {
	Row int `json:"row" binding:"gte=0"`
	Col int `json:"col" binding:"gte=0"`
}

type RevealResponse struct {
	GameID        string                     `json:"game_id"`
	StateChanged  bool                       `json:"state_changed"`
	Revealed      []minesweeper.RevealedCell `json:"revealed,omitempty"`
	Status        GameStatus                 `json:"status"`
	SafeRemaining int                        `json:"safe_remaining"`
	Mines         []minesweeper.Point        `json:"mines,omitempty"` // populated on loss for the end-of-game reveal
}

type FlagResponse struct {
	GameID     string `json:"game_id"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Annotation string `json:"annotation"`
}
