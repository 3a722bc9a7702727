package app

import (
	"errors"
	"testing"
	"time"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)}
}

func testCompounds() []domain.Compound {
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
			Formula: "HCl",
			Name:    "氯化氢",
			Labels: domain.Labels{
				AcidBase:               "强酸",
				HydrolysisElectrolysis: "强电解质",
				State:                  "气体",
				Reactions:              []string{"HCl+NaOH→NaCl+H2O"},
				Other:                  "有挥发性",
			},
		},
	}
}

func newTestSession(clock *fakeClock) *Session {
	cat := catalog.New(testCompounds())
	answer, _ := cat.FindByFormula("H2SO4")
	return NewSession(SessionParams{
		ID:      "s1",
		Player:  domain.Player{ID: "m1"},
		Catalog: cat,
		Answer:  answer,
		Limits:  DefaultLimits,
		Now:     clock.Now,
	})
}

func TestSessionStartsPlaying(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)
	state := s.Snapshot()
	if state.Status != domain.StatusPlaying || state.AttemptsRemaining != 10 {
		t.Fatalf("unexpected initial state %+v", state)
	}
	if !state.Deadline.Equal(clock.now.Add(120 * time.Second)) {
		t.Fatalf("expected deadline two minutes out, got %v", state.Deadline)
	}
	if state.InitialHint != "液体" {
		t.Fatalf("expected state label as hint, got %q", state.InitialHint)
	}
	if _, err := s.Summary(); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected summary to fail while playing, got %v", err)
	}
}

func TestSessionLosesAfterMaxWrongGuesses(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	for i := 0; i < 10; i++ {
		if _, err := s.SubmitGuess("HCl"); err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
	}
	state := s.Snapshot()
	if state.Status != domain.StatusLostAttempts || state.AttemptsRemaining != 0 {
		t.Fatalf("expected lost on attempts, got %s with %d left", state.Status, state.AttemptsRemaining)
	}
	if len(state.Guesses) != 10 {
		t.Fatalf("expected 10 guesses recorded, got %d", len(state.Guesses))
	}
	if _, err := s.SubmitGuess("H2SO4"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state after loss, got %v", err)
	}

	summary, err := s.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Result != domain.ResultFail || summary.Reason != domain.ReasonAttempts {
		t.Fatalf("unexpected summary outcome %s/%s", summary.Result, summary.Reason)
	}
}

func TestSessionWinsOnCorrectGuess(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	if _, err := s.SubmitGuess("HCl"); err != nil {
		t.Fatalf("guess: %v", err)
	}
	clock.Advance(41600 * time.Millisecond)
	guess, err := s.SubmitGuess("h2so4")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !guess.Feedback.IsCorrect {
		t.Fatalf("expected correct feedback")
	}
	if s.Status() != domain.StatusWonCorrect {
		t.Fatalf("expected win, got %s", s.Status())
	}

	summary, err := s.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Result != domain.ResultSuccess || summary.Reason != domain.ReasonCorrect {
		t.Fatalf("unexpected summary outcome %s/%s", summary.Result, summary.Reason)
	}
	if summary.DurationSeconds != 42 {
		t.Fatalf("expected rounded duration 42s, got %d", summary.DurationSeconds)
	}
	if len(summary.Guesses) != 2 || summary.Guesses[0].Compound.Formula != "HCl" {
		t.Fatalf("expected guesses in order, got %+v", summary.Guesses)
	}
}

func TestSessionUnknownFormulaKeepsAttempt(t *testing.T) {
	s := newTestSession(newFakeClock())
	if _, err := s.SubmitGuess("XeF6"); !errors.Is(err, domain.ErrUnknownFormula) {
		t.Fatalf("expected unknown formula, got %v", err)
	}
	if got := s.Snapshot().AttemptsRemaining; got != 10 {
		t.Fatalf("expected no attempt consumed, got %d left", got)
	}
}

func TestSessionTimeout(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	clock.Advance(119 * time.Second)
	if s.CheckTimeout() {
		t.Fatalf("expected no timeout before deadline")
	}
	if s.Remaining() != time.Second {
		t.Fatalf("expected 1s remaining, got %v", s.Remaining())
	}

	clock.Advance(time.Second)
	if !s.CheckTimeout() {
		t.Fatalf("expected timeout at deadline")
	}
	if s.CheckTimeout() {
		t.Fatalf("expected timeout to fire once")
	}
	if s.Status() != domain.StatusLostTimeout {
		t.Fatalf("expected lost on time, got %s", s.Status())
	}
	if _, err := s.SubmitGuess("HCl"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected invalid state after timeout, got %v", err)
	}
	summary, _ := s.Summary()
	if summary.Reason != domain.ReasonTimer || summary.DurationSeconds != 120 {
		t.Fatalf("unexpected timeout summary %+v", summary)
	}
}

func TestSessionTimeoutBeatsLateCorrectGuess(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	clock.Advance(120 * time.Second)
	if _, err := s.SubmitGuess("H2SO4"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected late guess rejected, got %v", err)
	}
	state := s.Snapshot()
	if state.Status != domain.StatusLostTimeout || len(state.Guesses) != 0 {
		t.Fatalf("expected timeout without recording the guess, got %s with %d guesses", state.Status, len(state.Guesses))
	}
}

func TestSessionSummaryClaimedOnce(t *testing.T) {
	s := newTestSession(newFakeClock())
	if _, ok := s.claimSummary(); ok {
		t.Fatalf("expected no summary while playing")
	}
	_, _ = s.SubmitGuess("H2SO4")
	if _, ok := s.claimSummary(); !ok {
		t.Fatalf("expected summary after win")
	}
	if _, ok := s.claimSummary(); ok {
		t.Fatalf("expected summary claimed only once")
	}
}
