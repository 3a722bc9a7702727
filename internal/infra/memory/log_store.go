package memory

import (
	"context"
	"sync"

	"chemguess-service/internal/domain"
)

// LogStore is an in-memory app.LogRepository. Each player's logs are kept newest first.
type LogStore struct {
	mu   sync.RWMutex
	logs map[string][]domain.SessionLog
}

func NewLogStore() *LogStore {
	return &LogStore{logs: make(map[string][]domain.SessionLog)}
}

func (s *LogStore) Add(_ context.Context, entry domain.SessionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[entry.PlayerID] = append([]domain.SessionLog{entry}, s.logs[entry.PlayerID]...)
	return nil
}

func (s *LogStore) List(_ context.Context, playerID string, limit int) ([]domain.SessionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := s.logs[playerID]
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	out := make([]domain.SessionLog, len(logs))
	copy(out, logs)
	return out, nil
}

func (s *LogStore) Delete(_ context.Context, playerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logs := s.logs[playerID]
	for i, l := range logs {
		if l.ID == id {
			s.logs[playerID] = append(logs[:i:i], logs[i+1:]...)
			return nil
		}
	}
	return domain.ErrLogNotFound
}

func (s *LogStore) Clear(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, playerID)
	return nil
}

func (s *LogStore) Trim(_ context.Context, playerID string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logs := s.logs[playerID]; len(logs) > keep {
		s.logs[playerID] = logs[:keep]
	}
	return nil
}
