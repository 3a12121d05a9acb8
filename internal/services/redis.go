package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"minesweeper-backend/internal/config"
	"minesweeper-backend/internal/models"
)

// RedisService is the redis-backed SessionStore. Values are JSON; sessions
// and players expire with the configured TTL so abandoned guests clean
// themselves up.
type RedisService struct {
	client       *redis.Client
	ctx          context.Context
	sessionTTL   time.Duration
	historyLimit int
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client:       client,
		ctx:          ctx,
		sessionTTL:   cfg.SessionTTL,
		historyLimit: cfg.HistoryLimit,
	}, nil
}

func (s *RedisService) SavePlayer(player *models.Player) error {
	key := fmt.Sprintf(KeyPlayer, player.ID)

	data, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %v", err)
	}

	return s.client.Set(s.ctx, key, data, s.sessionTTL).Err()
}

func (s *RedisService) GetPlayer(playerID string) (*models.Player, error) {
	key := fmt.Sprintf(KeyPlayer, playerID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %v", err)
	}

	var player models.Player
	if err := json.Unmarshal([]byte(data), &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %v", err)
	}

	return &player, nil
}

func (s *RedisService) DeletePlayer(playerID string) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyPlayer, playerID)).Err()
}

func (s *RedisService) SaveGameSession(session *models.GameSession) error {
	key := fmt.Sprintf(KeyGameSession, session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal game session: %v", err)
	}

	return s.client.Set(s.ctx, key, data, s.sessionTTL).Err()
}

func (s *RedisService) GetGameSession(gameID string) (*models.GameSession, error) {
	key := fmt.Sprintf(KeyGameSession, gameID)

	data, err := s.client.Get(s.ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %v", err)
	}

	var session models.GameSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game session: %v", err)
	}

	return &session, nil
}

func (s *RedisService) UpdateGameSession(session *models.GameSession) error {
	return s.SaveGameSession(session)
}

func (s *RedisService) DeleteGameSession(gameID string) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyGameSession, gameID)).Err()
}

func (s *RedisService) AddActiveGame(playerID, gameID string) error {
	key := fmt.Sprintf(KeyPlayerActive, playerID)

	pipe := s.client.TxPipeline()
	pipe.SAdd(s.ctx, key, gameID)
	pipe.Expire(s.ctx, key, s.sessionTTL)
	_, err := pipe.Exec(s.ctx)
	return err
}

func (s *RedisService) RemoveActiveGame(playerID, gameID string) error {
	key := fmt.Sprintf(KeyPlayerActive, playerID)
	return s.client.SRem(s.ctx, key, gameID).Err()
}

func (s *RedisService) GetActiveGames(playerID string) ([]string, error) {
	key := fmt.Sprintf(KeyPlayerActive, playerID)
	return s.client.SMembers(s.ctx, key).Result()
}

func (s *RedisService) AppendHistory(playerID string, session *models.GameSession) error {
	key := fmt.Sprintf(KeyPlayerHistory, playerID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %v", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(s.ctx, key, data)
	pipe.LTrim(s.ctx, key, 0, int64(s.historyLimit)-1)
	pipe.Expire(s.ctx, key, s.sessionTTL)
	_, err = pipe.Exec(s.ctx)
	return err
}

func (s *RedisService) GetHistory(playerID string, limit int) ([]*models.GameSession, error) {
	key := fmt.Sprintf(KeyPlayerHistory, playerID)

	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	entries, err := s.client.LRange(s.ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %v", err)
	}

	sessions := make([]*models.GameSession, 0, len(entries))
	for _, entry := range entries {
		var session models.GameSession
		if err := json.Unmarshal([]byte(entry), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %v", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
