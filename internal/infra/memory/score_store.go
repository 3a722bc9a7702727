package memory

import (
	"context"
	"sort"
	"sync"

	"chemguess-service/internal/domain"
)

// ScoreStore is an in-memory app.ScoreRepository.
type ScoreStore struct {
	mu     sync.RWMutex
	scores map[string]domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[string]domain.ScoreRecord)}
}

func (s *ScoreStore) Upsert(_ context.Context, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[record.MachineID] = record
	return nil
}

func (s *ScoreStore) Get(_ context.Context, machineID string) (domain.ScoreRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.scores[machineID]
	return r, ok, nil
}

// List returns records ordered by machine ID so ranking ties are stable.
func (s *ScoreStore) List(context.Context) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreRecord, 0, len(s.scores))
	for _, r := range s.scores {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MachineID < out[j].MachineID })
	return out, nil
}
