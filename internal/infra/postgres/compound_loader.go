package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"chemguess-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CompoundLoader loads the compound catalog from Postgres; labels are JSONB.
type CompoundLoader struct {
	pool *pgxpool.Pool
}

func NewCompoundLoader(pool *pgxpool.Pool) *CompoundLoader {
	return &CompoundLoader{pool: pool}
}

func (l *CompoundLoader) LoadCompounds(ctx context.Context) ([]domain.Compound, error) {
	rows, err := l.pool.Query(ctx, `SELECT formula, name, labels FROM compounds ORDER BY position, formula`)
	if err != nil {
		return nil, fmt.Errorf("load compounds: %w", err)
	}
	defer rows.Close()

	var out []domain.Compound
	for rows.Next() {
		var (
			c   domain.Compound
			raw []byte
		)
		if err := rows.Scan(&c.Formula, &c.Name, &raw); err != nil {
			return nil, fmt.Errorf("scan compound: %w", err)
		}
		if err := json.Unmarshal(raw, &c.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels of %s: %w", c.Formula, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load compounds: %w", err)
	}
	return out, nil
}
