// Package catalog holds the immutable set of compounds a game draws from.
package catalog

import (
	"fmt"
	"strings"

	"chemguess-service/internal/domain"
)

// DefaultSearchLimit caps Search results when no limit is given.
const DefaultSearchLimit = 20

// Catalog is an immutable, indexed set of compounds. It is safe for concurrent reads.
type Catalog struct {
	compounds []domain.Compound
	byFormula map[string]int
}

// New indexes compounds by lowercased formula. Later duplicates are ignored.
func New(compounds []domain.Compound) *Catalog {
	c := &Catalog{
		compounds: make([]domain.Compound, 0, len(compounds)),
		byFormula: make(map[string]int, len(compounds)),
	}
	for _, compound := range compounds {
		key := formulaKey(compound.Formula)
		if _, dup := c.byFormula[key]; dup {
			continue
		}
		c.byFormula[key] = len(c.compounds)
		c.compounds = append(c.compounds, compound)
	}
	return c
}

func formulaKey(formula string) string {
	return strings.ToLower(strings.TrimSpace(formula))
}

// FindByFormula looks up a compound by exact formula, ignoring case.
func (c *Catalog) FindByFormula(formula string) (domain.Compound, bool) {
	i, ok := c.byFormula[formulaKey(formula)]
	if !ok {
		return domain.Compound{}, false
	}
	return c.compounds[i], true
}

// All returns a copy of every compound in catalog order.
func (c *Catalog) All() []domain.Compound {
	out := make([]domain.Compound, len(c.compounds))
	copy(out, c.compounds)
	return out
}

// Len reports the number of compounds.
func (c *Catalog) Len() int {
	return len(c.compounds)
}

// Search returns compounds whose formula or name contains query, ignoring case.
func (c *Catalog) Search(query string, limit int) []domain.Compound {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Compound{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	out := make([]domain.Compound, 0, limit)
	for _, compound := range c.compounds {
		if strings.Contains(strings.ToLower(compound.Formula), q) ||
			strings.Contains(strings.ToLower(compound.Name), q) {
			out = append(out, compound)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Validate checks the fields every compound must carry.
func Validate(c domain.Compound) error {
	fields := []struct{ name, value string }{
		{"formula", c.Formula},
		{"name", c.Name},
		{"acidBase", c.Labels.AcidBase},
		{"hydrolysisElectrolysis", c.Labels.HydrolysisElectrolysis},
		{"state", c.Labels.State},
		{"other", c.Labels.Other},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %q missing %s", domain.ErrInvalidCompound, c.Formula, strings.Join(missing, ", "))
	}
	return nil
}

// Sanitize keeps valid compounds, dropping invalid ones and reporting them through skip.
func Sanitize(compounds []domain.Compound, skip func(error)) []domain.Compound {
	out := make([]domain.Compound, 0, len(compounds))
	for _, c := range compounds {
		if err := Validate(c); err != nil {
			if skip != nil {
				skip(err)
			}
			continue
		}
		if c.Labels.Reactions == nil {
			c.Labels.Reactions = []string{}
		}
		out = append(out, c)
	}
	return out
}
