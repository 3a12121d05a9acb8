package minesweeper

// Annotation is the player-placed mark on an unrevealed cell. It cycles
// none -> flag -> question -> none and never survives a reveal.
type Annotation int

const (
	AnnotationNone Annotation = iota
	AnnotationFlag
	AnnotationQuestion
)

func (a Annotation) String() string {
	switch a {
	case AnnotationFlag:
		return "flag"
	case AnnotationQuestion:
		return "question"
	default:
		return "none"
	}
}

// Cell is one grid position. Cells are only mutated through Board methods,
// which is what keeps "revealed implies unannotated" true.
type Cell struct {
	mine       bool
	revealed   bool
	annotation Annotation
}

func (c Cell) IsMine() bool { return c.mine }

func (c Cell) IsRevealed() bool { return c.revealed }

func (c Cell) Annotation() Annotation { return c.annotation }
