package minesweeper

import "fmt"

// RevealedCell is one cell newly uncovered by a Reveal call, with its
// adjacent mine count for rendering. Adjacent is -1 for a struck mine.
type RevealedCell struct {
	Row      int `json:"row"`
	Col      int `json:"col"`
	Adjacent int `json:"adjacent"`
}

// RevealResult reports what a Reveal call changed. StateChanged is false for
// the no-op cases (inactive game, already-revealed cell, flagged cell).
type RevealResult struct {
	StateChanged bool           `json:"state_changed"`
	Revealed     []RevealedCell `json:"revealed,omitempty"`
	State        GameState      `json:"-"`
}

// Reveal uncovers the cell at (row, col) and applies the game rules: a mine
// ends the game as Lost; a zero-adjacency cell floods outward through its
// connected zero region plus the numbered border. The flood runs on an
// explicit FIFO queue so large boards cannot exhaust the stack; revisits are
// cut off by the revealed flag, so no separate visited set is needed.
func (b *Board) Reveal(row, col int) (RevealResult, error) {
	if !b.inBounds(row, col) {
		return RevealResult{State: b.state}, fmt.Errorf("%w: (%d,%d) on %dx%d board",
			ErrOutOfBounds, row, col, b.rows, b.cols)
	}

	res := RevealResult{State: b.state}
	if b.state != StateActive {
		return res, nil
	}

	cell := &b.cells[row][col]
	if cell.revealed || cell.annotation == AnnotationFlag {
		return res, nil
	}

	if cell.mine {
		cell.revealed = true
		cell.annotation = AnnotationNone
		b.state = StateLost
		res.StateChanged = true
		res.Revealed = []RevealedCell{{Row: row, Col: col, Adjacent: -1}}
		res.State = b.state
		return res, nil
	}

	queue := []Point{{Row: row, Col: col}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		c := &b.cells[p.Row][p.Col]
		if c.revealed || c.annotation == AnnotationFlag {
			continue
		}

		c.revealed = true
		c.annotation = AnnotationNone
		b.safeRemaining--

		adj := b.AdjacentMines(p.Row, p.Col)
		res.Revealed = append(res.Revealed, RevealedCell{Row: p.Row, Col: p.Col, Adjacent: adj})

		if adj == 0 {
			for nr := p.Row - 1; nr <= p.Row+1; nr++ {
				for nc := p.Col - 1; nc <= p.Col+1; nc++ {
					if (nr == p.Row && nc == p.Col) || !b.inBounds(nr, nc) {
						continue
					}
					if !b.cells[nr][nc].revealed {
						queue = append(queue, Point{Row: nr, Col: nc})
					}
				}
			}
		}
	}

	if b.safeRemaining == 0 {
		b.state = StateWon
	}

	res.StateChanged = len(res.Revealed) > 0
	res.State = b.state
	return res, nil
}

// ToggleFlag cycles the annotation on an unrevealed cell:
// none -> flag -> question -> none. A no-op once the game has ended or the
// cell is revealed; the returned annotation is the cell's current state
// either way. Annotations never affect win/loss.
func (b *Board) ToggleFlag(row, col int) (Annotation, error) {
	if !b.inBounds(row, col) {
		return AnnotationNone, fmt.Errorf("%w: (%d,%d) on %dx%d board",
			ErrOutOfBounds, row, col, b.rows, b.cols)
	}

	cell := &b.cells[row][col]
	if b.state != StateActive || cell.revealed {
		return cell.annotation, nil
	}

	switch cell.annotation {
	case AnnotationNone:
		cell.annotation = AnnotationFlag
	case AnnotationFlag:
		cell.annotation = AnnotationQuestion
	default:
		cell.annotation = AnnotationNone
	}

	return cell.annotation, nil
}
