package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"chemguess-service/internal/app"
	"chemguess-service/internal/domain"
	"chemguess-service/internal/infra/memory"
)

type testEnv struct {
	server *httptest.Server
	games  *app.GameService
	logs   *app.LogService
	board  *app.LeaderboardService
}

func newTestEnv(t *testing.T, answer string, limits app.Limits, tick time.Duration) *testEnv {
	t.Helper()
	repo := memory.NewCatalogRepository(memory.NewStaticLoader(sampleCompounds()), time.Minute)
	logs := app.NewLogService(memory.NewLogStore(), 0)
	board := app.NewLeaderboardService(memory.NewScoreStore())
	games := app.NewGameService(
		memory.NewSessionStore(),
		repo,
		fixedSelector{repo: repo, formula: answer},
		app.NewResultRecorder(logs, board),
		app.WithLimits(limits),
	)
	api := NewAPIHandler(games, board, logs)
	ws := NewWSHandler(games, WithTickInterval(tick))
	server := httptest.NewServer(NewRouter(api, ws))
	t.Cleanup(server.Close)
	return &testEnv{server: server, games: games, logs: logs, board: board}
}

type fixedSelector struct {
	repo    *memory.CatalogRepository
	formula string
}

func (s fixedSelector) Draw(ctx context.Context) (domain.Compound, error) {
	cat, err := s.repo.GetCatalog(ctx)
	if err != nil {
		return domain.Compound{}, err
	}
	c, ok := cat.FindByFormula(s.formula)
	if !ok {
		return domain.Compound{}, domain.ErrCatalogEmpty
	}
	return c, nil
}

func sampleCompounds() []domain.Compound {
	return []domain.Compound{
		{
			Formula: "HCl",
			Name:    "氯化氢",
			Labels: domain.Labels{
				AcidBase:               "强酸",
				HydrolysisElectrolysis: "电解",
				State:                  "气体",
				Reactions:              []string{"HCl + NaOH = NaCl + H2O"},
				Other:                  "刺激性气味",
			},
		},
		{
			Formula: "H2SO4",
			Name:    "硫酸",
			Labels: domain.Labels{
				AcidBase:               "强酸",
				HydrolysisElectrolysis: "电解",
				State:                  "液体",
				Reactions:              []string{"H2SO4 + BaCl2 = BaSO4 + 2HCl"},
				Other:                  "吸水性/脱水性",
			},
		},
		{
			Formula: "NaOH",
			Name:    "氢氧化钠",
			Labels: domain.Labels{
				AcidBase:               "强碱",
				HydrolysisElectrolysis: "电解",
				State:                  "固体",
				Reactions:              []string{"HCl + NaOH = NaCl + H2O"},
				Other:                  "潮解",
			},
		},
	}
}
