package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Custom boards are capped well below anything a client can usefully render;
// the core itself only requires mines < rows*cols.
const (
	MaxRows = 64
	MaxCols = 64
)

func GenerateGameID() string {
	return fmt.Sprintf("game_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GeneratePlayerID() string {
	return uuid.New().String()
}

// Validate checks the request the same way the board constructor will, so the
// API can reject bad custom games with a friendly message instead of leaning
// on the core sentinel. A preset name overrides custom dimensions.
func (r *NewGameRequest) Validate() error {
	if r.Preset != "" {
		if _, ok := PresetByName(r.Preset); !ok {
			return fmt.Errorf("unknown preset: %s", r.Preset)
		}
		return nil
	}

	if r.Rows <= 0 || r.Cols <= 0 {
		return fmt.Errorf("board must have positive dimensions, got %dx%d", r.Rows, r.Cols)
	}
	if r.Rows > MaxRows || r.Cols > MaxCols {
		return fmt.Errorf("board exceeds the %dx%d maximum", MaxRows, MaxCols)
	}
	if r.Mines <= 0 {
		return fmt.Errorf("board needs at least one mine")
	}
	if r.Mines >= r.Rows*r.Cols {
		return fmt.Errorf("%d mines on a %dx%d board leaves no safe tile", r.Mines, r.Rows, r.Cols)
	}

	return nil
}

// Resolve returns the effective board shape for the request.
func (r *NewGameRequest) Resolve() (rows, cols, mines int) {
	if r.Preset != "" {
		if p, ok := PresetByName(r.Preset); ok {
			return p.Rows, p.Cols, p.Mines
		}
	}
	return r.Rows, r.Cols, r.Mines
}
