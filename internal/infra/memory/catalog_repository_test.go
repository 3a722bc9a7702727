package memory

import (
	"context"
	"testing"
	"time"

	"chemguess-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CompoundLoader: NewStaticLoader(sampleCompounds())}
	repo := NewCatalogRepository(loader, time.Minute)

	cat, err := repo.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected invalid compound skipped, got %d compounds", cat.Len())
	}

	if _, err := repo.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCatalogRepositoryExpiresAndInvalidates(t *testing.T) {
	loader := &countingLoader{CompoundLoader: NewStaticLoader(sampleCompounds())}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetCatalog(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetCatalog(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}

	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	compounds, err := repo.Compounds(context.Background())
	if err != nil {
		t.Fatalf("compounds: %v", err)
	}
	if loader.calls != 3 || len(compounds) != 2 {
		t.Fatalf("expected reload after invalidate, calls=%d compounds=%d", loader.calls, len(compounds))
	}
}

type countingLoader struct {
	CompoundLoader
	calls int
}

func (l *countingLoader) LoadCompounds(ctx context.Context) ([]domain.Compound, error) {
	l.calls++
	return l.CompoundLoader.LoadCompounds(ctx)
}

func sampleCompounds() []domain.Compound {
	return []domain.Compound{
		{
			Formula: "H2SO4",
			Name:    "硫酸",
			Labels: domain.Labels{
				AcidBase:               "强酸",
				HydrolysisElectrolysis: "强电解质",
				State:                  "液体",
				Reactions:              []string{"H2SO4+NaOH→Na2SO4+H2O"},
				Other:                  "有腐蚀性",
			},
		},
		{
			Formula: "NaOH",
			Name:    "氢氧化钠",
			Labels: domain.Labels{
				AcidBase:               "强碱",
				HydrolysisElectrolysis: "强电解质",
				State:                  "固体",
				Other:                  "易潮解",
			},
		},
		{Formula: "X", Name: "incomplete"},
	}
}
