package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"minesweeper-backend/internal/minesweeper"
	"minesweeper-backend/internal/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameEnded    = errors.New("game already ended")
	ErrNotYourGame  = errors.New("game belongs to another player")
)

// GameEngine owns the live boards. Each action locks its instance and runs
// to completion, so board mutation stays strictly sequential per game. The
// session store only ever sees the resulting records.
type GameEngine struct {
	store       SessionStore
	broadcaster Broadcaster

	mu          sync.RWMutex
	activeGames map[string]*GameInstance
}

type GameInstance struct {
	mu         sync.Mutex
	Session    *models.GameSession
	Board      *minesweeper.Board
	LastAction time.Time
}

func NewGameEngine(store SessionStore) *GameEngine {
	return &GameEngine{
		store:       store,
		activeGames: make(map[string]*GameInstance),
	}
}

// SetBroadcaster wires the push channel in after construction; the handlers
// that implement it need the engine first.
func (ge *GameEngine) SetBroadcaster(b Broadcaster) {
	ge.broadcaster = b
}

func (ge *GameEngine) CreateGame(ctx context.Context, playerID string, req *models.NewGameRequest) (*models.GameSession, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game request: %v", err)
	}

	rows, cols, mines := req.Resolve()

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Seed))
	}

	board, err := minesweeper.New(rows, cols, mines, rng)
	if err != nil {
		return nil, fmt.Errorf("invalid game request: %v", err)
	}

	now := time.Now()
	session := &models.GameSession{
		ID:            models.GenerateGameID(),
		PlayerID:      playerID,
		Rows:          rows,
		Cols:          cols,
		Mines:         mines,
		Preset:        req.Preset,
		Status:        models.GameStatusActive,
		SafeRemaining: board.SafeRemaining(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := ge.store.SaveGameSession(session); err != nil {
		return nil, fmt.Errorf("failed to save game session: %v", err)
	}
	if err := ge.store.AddActiveGame(playerID, session.ID); err != nil {
		// Drop the session record so it cannot linger unlisted.
		if derr := ge.store.DeleteGameSession(session.ID); derr != nil {
			log.Printf("Failed to roll back game session %s: %v", session.ID, derr)
		}
		return nil, fmt.Errorf("failed to register active game: %v", err)
	}

	ge.mu.Lock()
	ge.activeGames[session.ID] = &GameInstance{
		Session:    session,
		Board:      board,
		LastAction: now,
	}
	ge.mu.Unlock()

	return session, nil
}

// Reveal applies a left click. On a terminal transition the session is moved
// from the active set to history and the live board is dropped; the response
// carries the mine coordinates when the game was lost.
func (ge *GameEngine) Reveal(ctx context.Context, playerID, gameID string, row, col int) (*models.RevealResponse, error) {
	instance, err := ge.instanceFor(playerID, gameID)
	if err != nil {
		return nil, err
	}

	instance.mu.Lock()
	defer instance.mu.Unlock()

	if instance.Session.Status.Terminal() {
		return nil, ErrGameEnded
	}

	res, err := instance.Board.Reveal(row, col)
	if err != nil {
		return nil, err
	}
	instance.LastAction = time.Now()

	resp := &models.RevealResponse{
		GameID:        gameID,
		StateChanged:  res.StateChanged,
		Revealed:      res.Revealed,
		Status:        statusFor(res.State),
		SafeRemaining: instance.Board.SafeRemaining(),
	}
	if res.State == minesweeper.StateLost {
		resp.Mines = instance.Board.MineLocations()
	}

	if res.StateChanged {
		instance.Session.SafeRemaining = instance.Board.SafeRemaining()
		instance.Session.Status = resp.Status
		instance.Session.UpdatedAt = instance.LastAction

		if resp.Status.Terminal() {
			instance.Session.EndedAt = instance.LastAction
			ge.retire(instance)
			if ge.broadcaster != nil {
				ge.broadcaster.BroadcastGameOver(playerID, resp)
			}
		} else if err := ge.store.UpdateGameSession(instance.Session); err != nil {
			log.Printf("Failed to update game session %s: %v", gameID, err)
		}
	}

	return resp, nil
}

// ToggleFlag applies a right click: none -> flag -> question -> none.
func (ge *GameEngine) ToggleFlag(ctx context.Context, playerID, gameID string, row, col int) (*models.FlagResponse, error) {
	instance, err := ge.instanceFor(playerID, gameID)
	if err != nil {
		return nil, err
	}

	instance.mu.Lock()
	defer instance.mu.Unlock()

	if instance.Session.Status.Terminal() {
		return nil, ErrGameEnded
	}

	annotation, err := instance.Board.ToggleFlag(row, col)
	if err != nil {
		return nil, err
	}
	instance.LastAction = time.Now()

	return &models.FlagResponse{
		GameID:     gameID,
		Row:        row,
		Col:        col,
		Annotation: annotation.String(),
	}, nil
}

// GetGame returns the session record, from memory while live, from the store
// once finished.
func (ge *GameEngine) GetGame(playerID, gameID string) (*models.GameSession, error) {
	ge.mu.RLock()
	instance, live := ge.activeGames[gameID]
	ge.mu.RUnlock()

	if live {
		instance.mu.Lock()
		defer instance.mu.Unlock()
		if instance.Session.PlayerID != playerID {
			return nil, ErrNotYourGame
		}
		snapshot := *instance.Session
		return &snapshot, nil
	}

	session, err := ge.store.GetGameSession(gameID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.PlayerID != playerID {
		return nil, ErrNotYourGame
	}
	return session, nil
}

// GameView snapshots the visible board of a live game for reconnecting
// clients. Finished games have no board to snapshot.
func (ge *GameEngine) GameView(playerID, gameID string) (*models.BoardView, error) {
	instance, err := ge.instanceFor(playerID, gameID)
	if err != nil {
		return nil, err
	}

	instance.mu.Lock()
	defer instance.mu.Unlock()

	board := instance.Board
	view := &models.BoardView{
		Rows:  board.Rows(),
		Cols:  board.Cols(),
		Cells: make([][]models.CellView, board.Rows()),
	}
	for r := 0; r < board.Rows(); r++ {
		view.Cells[r] = make([]models.CellView, board.Cols())
		for c := 0; c < board.Cols(); c++ {
			cell, err := board.CellAt(r, c)
			if err != nil {
				return nil, err
			}
			cv := models.CellView{Revealed: cell.IsRevealed()}
			if cell.IsRevealed() {
				cv.Adjacent = board.AdjacentMines(r, c)
			} else if cell.Annotation() != minesweeper.AnnotationNone {
				cv.Annotation = cell.Annotation().String()
			}
			view.Cells[r][c] = cv
		}
	}

	return view, nil
}

func (ge *GameEngine) GetPlayerActiveGames(playerID string) ([]*models.GameSession, error) {
	gameIDs, err := ge.store.GetActiveGames(playerID)
	if err != nil {
		return nil, err
	}

	sessions := make([]*models.GameSession, 0, len(gameIDs))
	for _, gameID := range gameIDs {
		session, err := ge.store.GetGameSession(gameID)
		if err == nil && session.Status == models.GameStatusActive {
			sessions = append(sessions, session)
		}
	}

	return sessions, nil
}

func (ge *GameEngine) GetPlayerHistory(playerID string, limit int) ([]*models.GameSession, error) {
	return ge.store.GetHistory(playerID, limit)
}

// CleanupStaleGames abandons live games idle for longer than maxAge. Run
// from a ticker in main.
func (ge *GameEngine) CleanupStaleGames(maxAge time.Duration) {
	ge.mu.RLock()
	stale := make([]*GameInstance, 0)
	for _, instance := range ge.activeGames {
		stale = append(stale, instance)
	}
	ge.mu.RUnlock()

	now := time.Now()
	for _, instance := range stale {
		instance.mu.Lock()
		if instance.Session.Status.Terminal() || now.Sub(instance.LastAction) <= maxAge {
			instance.mu.Unlock()
			continue
		}
		instance.Session.Status = models.GameStatusAbandoned
		instance.Session.UpdatedAt = now
		instance.Session.EndedAt = now
		ge.retire(instance)
		instance.mu.Unlock()
		log.Printf("Abandoned stale game %s", instance.Session.ID)
	}
}

// retire persists a terminal session, moves it to history and drops the live
// board. Callers hold the instance lock.
func (ge *GameEngine) retire(instance *GameInstance) {
	session := instance.Session

	if err := ge.store.UpdateGameSession(session); err != nil {
		log.Printf("Failed to update game session %s: %v", session.ID, err)
	}
	if err := ge.store.RemoveActiveGame(session.PlayerID, session.ID); err != nil {
		log.Printf("Failed to remove active game %s: %v", session.ID, err)
	}
	if err := ge.store.AppendHistory(session.PlayerID, session); err != nil {
		log.Printf("Failed to append history for game %s: %v", session.ID, err)
	}

	ge.mu.Lock()
	delete(ge.activeGames, session.ID)
	ge.mu.Unlock()
}

func (ge *GameEngine) instanceFor(playerID, gameID string) (*GameInstance, error) {
	ge.mu.RLock()
	instance, ok := ge.activeGames[gameID]
	ge.mu.RUnlock()

	if !ok {
		session, err := ge.store.GetGameSession(gameID)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrGameNotFound
		}
		if err != nil {
			return nil, err
		}
		if session.PlayerID != playerID {
			return nil, ErrNotYourGame
		}
		if session.Status.Terminal() {
			return nil, ErrGameEnded
		}
		// Session record exists but the board is gone (restart).
		return nil, ErrGameNotFound
	}

	if instance.Session.PlayerID != playerID {
		return nil, ErrNotYourGame
	}
	return instance, nil
}

func statusFor(state minesweeper.GameState) models.GameStatus {
	switch state {
	case minesweeper.StateWon:
		return models.GameStatusWon
	case minesweeper.StateLost:
		return models.GameStatusLost
	default:
		return models.GameStatusActive
	}
}
