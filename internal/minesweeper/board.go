package minesweeper

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	// ErrInvalidConfiguration rejects board dimensions or mine counts that
	// cannot produce a playable game. Non-fatal: the caller reports it and
	// lets the player correct the input.
	ErrInvalidConfiguration = errors.New("invalid board configuration")

	// ErrOutOfBounds means the caller passed a coordinate outside the grid.
	// The board itself is never in that state, so this indicates a caller bug.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// GameState is the per-game state machine: Active until the first mine hit
// (Lost) or until every safe cell is revealed (Won). Both are terminal.
type GameState int

const (
	StateActive GameState = iota
	StateWon
	StateLost
)

func (s GameState) String() string {
	switch s {
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "active"
	}
}

// Point is a grid coordinate, row-major.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Board owns the cell grid and all game-rule bookkeeping. Shape (rows, cols,
// mines) is fixed at construction; cell state mutates only through Reveal and
// ToggleFlag. Board is not safe for concurrent use; callers serialize access.
type Board struct {
	rows, cols int
	mines      int

	cells         [][]Cell
	mineLocations []Point

	state         GameState
	safeRemaining int
}

// New builds a rows x cols board with exactly mines mines placed uniformly at
// random, rejecting duplicate coordinates. rng may be nil, in which case a
// time-seeded source is used; tests pass a fixed seed for determinism.
func New(rows, cols, mines int, rng *rand.Rand) (*Board, error) {
	b, err := newEmpty(rows, cols, mines)
	if err != nil {
		return nil, err
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	placed := 0
	for placed < mines {
		r := rng.Intn(rows)
		c := rng.Intn(cols)
		if b.cells[r][c].mine {
			continue
		}
		b.cells[r][c].mine = true
		b.mineLocations = append(b.mineLocations, Point{Row: r, Col: c})
		placed++
	}

	return b, nil
}

// NewWithMines builds a board with mines at the given coordinates. Used for
// deterministic setups; validation matches New, plus duplicate and bounds
// checks on the mine list.
func NewWithMines(rows, cols int, mines []Point) (*Board, error) {
	b, err := newEmpty(rows, cols, len(mines))
	if err != nil {
		return nil, err
	}

	for _, p := range mines {
		if !b.inBounds(p.Row, p.Col) {
			return nil, fmt.Errorf("%w: mine at (%d,%d)", ErrOutOfBounds, p.Row, p.Col)
		}
		if b.cells[p.Row][p.Col].mine {
			return nil, fmt.Errorf("%w: duplicate mine at (%d,%d)", ErrInvalidConfiguration, p.Row, p.Col)
		}
		b.cells[p.Row][p.Col].mine = true
		b.mineLocations = append(b.mineLocations, p)
	}

	return b, nil
}

func newEmpty(rows, cols, mines int) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrInvalidConfiguration, rows, cols)
	}
	if mines <= 0 {
		return nil, fmt.Errorf("%w: %d mines", ErrInvalidConfiguration, mines)
	}
	if mines >= rows*cols {
		return nil, fmt.Errorf("%w: %d mines on a %dx%d grid leaves no safe cell",
			ErrInvalidConfiguration, mines, rows, cols)
	}

	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}

	return &Board{
		rows:          rows,
		cols:          cols,
		mines:         mines,
		cells:         cells,
		mineLocations: make([]Point, 0, mines),
		state:         StateActive,
		safeRemaining: rows*cols - mines,
	}, nil
}

func (b *Board) Rows() int { return b.rows }

func (b *Board) Cols() int { return b.cols }

func (b *Board) Mines() int { return b.mines }

func (b *Board) State() GameState { return b.state }

// SafeRemaining is the number of non-mine cells not yet revealed. The game is
// won exactly when it reaches zero.
func (b *Board) SafeRemaining() int { return b.safeRemaining }

// MineLocations returns the fixed mine coordinates, recorded at placement,
// for the end-of-game reveal.
func (b *Board) MineLocations() []Point {
	out := make([]Point, len(b.mineLocations))
	copy(out, b.mineLocations)
	return out
}

// CellAt returns a snapshot of the cell at (row, col).
func (b *Board) CellAt(row, col int) (Cell, error) {
	if !b.inBounds(row, col) {
		return Cell{}, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, row, col, b.rows, b.cols)
	}
	return b.cells[row][col], nil
}

// AdjacentMines counts mines in the 8-connected neighborhood of (row, col),
// clamped to the grid. Pure query.
func (b *Board) AdjacentMines(row, col int) int {
	return b.countNeighbors(row, col, func(c Cell) bool { return c.mine })
}

// AdjacentFlags counts flagged neighbors of (row, col). Question marks do not
// count.
func (b *Board) AdjacentFlags(row, col int) int {
	return b.countNeighbors(row, col, func(c Cell) bool { return c.annotation == AnnotationFlag })
}

func (b *Board) countNeighbors(row, col int, match func(Cell) bool) int {
	n := 0
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if r == row && c == col {
				continue
			}
			if b.inBounds(r, c) && match(b.cells[r][c]) {
				n++
			}
		}
	}
	return n
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}
