package models

// CellView is the player-visible state of one cell: adjacency only once
// revealed, annotation only while hidden. Mine positions never appear here;
// they travel in the loss response.
type CellView struct {
	Revealed   bool   `json:"revealed"`
	Adjacent   int    `json:"adjacent,omitempty"`
	Annotation string `json:"annotation,omitempty"`
}

// BoardView is a full visible-board snapshot, used when a client reconnects
// to an in-progress game.
type BoardView struct {
	Rows  int          `json:"rows"`
	Cols  int          `json:"cols"`
	Cells [][]CellView `json:"cells"`
}
