package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"chemguess-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const scoresKey = "chem:scores"

// ScoreStore keeps leaderboard records as HSET chem:scores {machineId} {json}.
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) Upsert(ctx context.Context, record domain.ScoreRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	return s.client.HSet(ctx, scoresKey, record.MachineID, data).Err()
}

func (s *ScoreStore) Get(ctx context.Context, machineID string) (domain.ScoreRecord, bool, error) {
	data, err := s.client.HGet(ctx, scoresKey, machineID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ScoreRecord{}, false, nil
	}
	if err != nil {
		return domain.ScoreRecord{}, false, err
	}
	var record domain.ScoreRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.ScoreRecord{}, false, fmt.Errorf("unmarshal score %s: %w", machineID, err)
	}
	return record, true, nil
}

// List returns records ordered by machine ID so ranking ties are stable.
func (s *ScoreStore) List(ctx context.Context) ([]domain.ScoreRecord, error) {
	raw, err := s.client.HGetAll(ctx, scoresKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ScoreRecord, 0, len(raw))
	for id, data := range raw {
		var record domain.ScoreRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("unmarshal score %s: %w", id, err)
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MachineID < out[j].MachineID })
	return out, nil
}
