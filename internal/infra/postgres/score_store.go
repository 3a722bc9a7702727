package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chemguess-service/internal/domain"
	"github.com/uptrace/bun"
)

type scoreModel struct {
	bun.BaseModel `bun:"table:scores"`

	MachineID string    `bun:"machine_id,pk"`
	Username  string    `bun:"username,notnull"`
	Group     string    `bun:"group_name,notnull"`
	Wins      int       `bun:"wins,notnull"`
	Total     int       `bun:"total,notnull"`
	Accuracy  float64   `bun:"accuracy,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (m scoreModel) record() domain.ScoreRecord {
	return domain.ScoreRecord{
		MachineID: m.MachineID,
		Username:  m.Username,
		Group:     m.Group,
		Wins:      m.Wins,
		Total:     m.Total,
		Accuracy:  m.Accuracy,
		UpdatedAt: m.UpdatedAt,
	}
}

// ScoreStore persists leaderboard records with bun.
type ScoreStore struct {
	db *bun.DB
}

func NewScoreStore(db *bun.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) Upsert(ctx context.Context, r domain.ScoreRecord) error {
	m := scoreModel{
		MachineID: r.MachineID,
		Username:  r.Username,
		Group:     r.Group,
		Wins:      r.Wins,
		Total:     r.Total,
		Accuracy:  r.Accuracy,
		UpdatedAt: r.UpdatedAt,
	}
	_, err := s.db.NewInsert().
		Model(&m).
		On("CONFLICT (machine_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("group_name = EXCLUDED.group_name").
		Set("wins = EXCLUDED.wins").
		Set("total = EXCLUDED.total").
		Set("accuracy = EXCLUDED.accuracy").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) Get(ctx context.Context, machineID string) (domain.ScoreRecord, bool, error) {
	var m scoreModel
	err := s.db.NewSelect().Model(&m).Where("machine_id = ?", machineID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScoreRecord{}, false, nil
	}
	if err != nil {
		return domain.ScoreRecord{}, false, fmt.Errorf("get score: %w", err)
	}
	return m.record(), true, nil
}

// List returns records ordered by machine ID so ranking ties are stable.
func (s *ScoreStore) List(ctx context.Context) ([]domain.ScoreRecord, error) {
	var models []scoreModel
	if err := s.db.NewSelect().Model(&models).Order("machine_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	out := make([]domain.ScoreRecord, len(models))
	for i, m := range models {
		out[i] = m.record()
	}
	return out, nil
}
