package postgres

import (
	"context"
	"fmt"

	"chemguess-service/internal/domain"
	"github.com/uptrace/bun"
)

type compoundModel struct {
	bun.BaseModel `bun:"table:compounds"`

	Formula  string        `bun:"formula,pk"`
	Name     string        `bun:"name,notnull"`
	Labels   domain.Labels `bun:"labels,type:jsonb"`
	Position int           `bun:"position,notnull"`
}

// CompoundWriter imports compounds into Postgres.
type CompoundWriter struct {
	db *bun.DB
}

func NewCompoundWriter(db *bun.DB) *CompoundWriter {
	return &CompoundWriter{db: db}
}

// Import upserts compounds keyed by formula, keeping their input order.
// With replace set, compounds missing from the input are removed.
func (w *CompoundWriter) Import(ctx context.Context, compounds []domain.Compound, replace bool) (int, error) {
	if len(compounds) == 0 && !replace {
		return 0, nil
	}
	models := make([]compoundModel, len(compounds))
	for i, c := range compounds {
		models[i] = compoundModel{
			Formula:  c.Formula,
			Name:     c.Name,
			Labels:   c.Labels,
			Position: i,
		}
	}

	err := w.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if replace {
			if _, err := tx.NewDelete().Model((*compoundModel)(nil)).Where("TRUE").Exec(ctx); err != nil {
				return fmt.Errorf("clear compounds: %w", err)
			}
		}
		if len(models) == 0 {
			return nil
		}
		_, err := tx.NewInsert().
			Model(&models).
			On("CONFLICT (formula) DO UPDATE").
			Set("name = EXCLUDED.name").
			Set("labels = EXCLUDED.labels").
			Set("position = EXCLUDED.position").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("upsert compounds: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(models), nil
}
