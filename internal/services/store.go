package services

import (
	"errors"
	"sort"
	"sync"

	"minesweeper-backend/internal/models"
)

// ErrNotFound is returned by stores for missing players or sessions.
var ErrNotFound = errors.New("not found")

// SessionStore persists session records, per-player active sets and finished
// game history. RedisService is the production implementation; MemoryStore
// backs single-node deployments and tests. Neither stores live boards, which
// stay in the engine's memory for the lifetime of a game.
type SessionStore interface {
	SavePlayer(player *models.Player) error
	GetPlayer(playerID string) (*models.Player, error)
	DeletePlayer(playerID string) error

	SaveGameSession(session *models.GameSession) error
	GetGameSession(gameID string) (*models.GameSession, error)
	UpdateGameSession(session *models.GameSession) error
	DeleteGameSession(gameID string) error

	AddActiveGame(playerID, gameID string) error
	RemoveActiveGame(playerID, gameID string) error
	GetActiveGames(playerID string) ([]string, error)

	AppendHistory(playerID string, session *models.GameSession) error
	GetHistory(playerID string, limit int) ([]*models.GameSession, error)

	Close() error
}

// MemoryStore keeps everything in mutex-guarded maps.
type MemoryStore struct {
	mu           sync.RWMutex
	players      map[string]models.Player
	sessions     map[string]models.GameSession
	active       map[string]map[string]bool
	history      map[string][]models.GameSession
	historyLimit int
}

func NewMemoryStore(historyLimit int) *MemoryStore {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &MemoryStore{
		players:      make(map[string]models.Player),
		sessions:     make(map[string]models.GameSession),
		active:       make(map[string]map[string]bool),
		history:      make(map[string][]models.GameSession),
		historyLimit: historyLimit,
	}
}

func (s *MemoryStore) SavePlayer(player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = *player
	return nil
}

func (s *MemoryStore) GetPlayer(playerID string) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &player, nil
}

func (s *MemoryStore) DeletePlayer(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, playerID)
	return nil
}

func (s *MemoryStore) SaveGameSession(session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemoryStore) GetGameSession(gameID string) (*models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *MemoryStore) UpdateGameSession(session *models.GameSession) error {
	return s.SaveGameSession(session)
}

func (s *MemoryStore) DeleteGameSession(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, gameID)
	return nil
}

func (s *MemoryStore) AddActiveGame(playerID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[playerID] == nil {
		s.active[playerID] = make(map[string]bool)
	}
	s.active[playerID][gameID] = true
	return nil
}

func (s *MemoryStore) RemoveActiveGame(playerID, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active[playerID], gameID)
	return nil
}

func (s *MemoryStore) GetActiveGames(playerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.active[playerID]))
	for id := range s.active[playerID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) AppendHistory(playerID string, session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := append([]models.GameSession{*session}, s.history[playerID]...)
	if len(entries) > s.historyLimit {
		entries = entries[:s.historyLimit]
	}
	s.history[playerID] = entries
	return nil
}

func (s *MemoryStore) GetHistory(playerID string, limit int) ([]*models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.history[playerID]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	out := make([]*models.GameSession, len(entries))
	for i := range entries {
		session := entries[i]
		out[i] = &session
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
