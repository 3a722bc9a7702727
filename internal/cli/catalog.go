package cli

import (
	"log"

	"chemguess-service/internal/config"
	"chemguess-service/internal/domain"
	"chemguess-service/internal/infra/file"
	"chemguess-service/internal/infra/memory"
	"chemguess-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
)

// compoundLoader prefers Postgres, then the configured file, then the built-in sample.
func compoundLoader(cfg config.Config, pool *pgxpool.Pool) (memory.CompoundLoader, error) {
	switch {
	case pool != nil:
		return postgres.NewCompoundLoader(pool), nil
	case cfg.Catalog.Path != "":
		return file.NewLoader(cfg.Catalog.Path)
	default:
		log.Printf("no catalog source configured, using %d sample compounds", len(sampleCompounds()))
		return memory.NewStaticLoader(sampleCompounds()), nil
	}
}

// sampleCompounds provides a minimal catalog; point catalog.path or postgres.url at the real one.
func sampleCompounds() []domain.Compound {
	return []domain.Compound{
		{
			Formula: "HCl",
			Name:    "盐酸",
			Labels: domain.Labels{
				AcidBase:               "强酸",
				HydrolysisElectrolysis: "电解",
				State:                  "液体",
				Reactions:              []string{"HCl + NaOH = NaCl + H2O", "Fe + 2HCl = FeCl2 + H2↑"},
				Other:                  "挥发性/刺激性气味",
			},
		},
		{
			Formula: "H2SO4",
			Name:    "硫酸",
			Labels: domain.Labels{
				AcidBase:               "强酸",
				HydrolysisElectrolysis: "电解",
				State:                  "液体",
				Reactions:              []string{"H2SO4 + BaCl2 = BaSO4↓ + 2HCl"},
				Other:                  "吸水性/脱水性/强氧化性",
			},
		},
		{
			Formula: "CH3COOH",
			Name:    "乙酸",
			Labels: domain.Labels{
				AcidBase:               "弱酸",
				HydrolysisElectrolysis: "弱电解质",
				State:                  "液体",
				Reactions:              []string{"CH3COOH + NaOH = CH3COONa + H2O"},
				Other:                  "刺激性气味",
			},
		},
		{
			Formula: "NaOH",
			Name:    "氢氧化钠",
			Labels: domain.Labels{
				AcidBase:               "强碱",
				HydrolysisElectrolysis: "电解",
				State:                  "固体",
				Reactions:              []string{"HCl + NaOH = NaCl + H2O", "2NaOH + CO2 = Na2CO3 + H2O"},
				Other:                  "易潮解/腐蚀性",
			},
		},
		{
			Formula: "Na2CO3",
			Name:    "碳酸钠",
			Labels: domain.Labels{
				AcidBase:               "碱性",
				HydrolysisElectrolysis: "水解",
				State:                  "固体",
				Reactions:              []string{"Na2CO3 + 2HCl = 2NaCl + H2O + CO2↑"},
				Other:                  "俗称纯碱",
			},
		},
		{
			Formula: "NH4Cl",
			Name:    "氯化铵",
			Labels: domain.Labels{
				AcidBase:               "酸性",
				HydrolysisElectrolysis: "水解",
				State:                  "固体",
				Reactions:              []string{"NH4Cl + NaOH = NaCl + NH3↑ + H2O"},
				Other:                  "受热易分解",
			},
		},
		{
			Formula: "NaCl",
			Name:    "氯化钠",
			Labels: domain.Labels{
				AcidBase:               "中性",
				HydrolysisElectrolysis: "不水解",
				State:                  "固体",
				Reactions:              []string{"NaCl + AgNO3 = AgCl↓ + NaNO3"},
				Other:                  "食盐主要成分",
			},
		},
		{
			Formula: "NH3",
			Name:    "氨气",
			Labels: domain.Labels{
				AcidBase:               "碱性",
				HydrolysisElectrolysis: "非电解质",
				State:                  "气体",
				Reactions:              []string{"NH3 + HCl = NH4Cl"},
				Other:                  "刺激性气味/极易溶于水",
			},
		},
	}
}
