package app

import (
	"fmt"
	"math"
	"sync"
	"time"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/domain"
	"chemguess-service/internal/feedback"
)

// Limits bound a game session.
type Limits struct {
	MaxAttempts int
	MaxDuration time.Duration
}

// DefaultLimits are ten attempts within two minutes.
var DefaultLimits = Limits{MaxAttempts: 10, MaxDuration: 120 * time.Second}

// SessionParams describe a new session.
type SessionParams struct {
	ID      string
	Player  domain.Player
	Catalog *catalog.Catalog
	Answer  domain.Compound
	Limits  Limits
	Now     func() time.Time
}

// Session is one game against a hidden compound. Every exported method is
// atomic with respect to the others.
type Session struct {
	id          string
	player      domain.Player
	catalog     *catalog.Catalog
	answer      domain.Compound
	maxAttempts int
	now         func() time.Time

	mu                sync.Mutex
	guesses           []domain.Guess
	attemptsRemaining int
	startedAt         time.Time
	deadline          time.Time
	endedAt           time.Time
	status            domain.Status
	reported          bool
}

// NewSession starts the clock on a new session.
func NewSession(p SessionParams) *Session {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	limits := p.Limits
	if limits.MaxAttempts <= 0 {
		limits.MaxAttempts = DefaultLimits.MaxAttempts
	}
	if limits.MaxDuration <= 0 {
		limits.MaxDuration = DefaultLimits.MaxDuration
	}
	started := now()
	return &Session{
		id:                p.ID,
		player:            p.Player,
		catalog:           p.Catalog,
		answer:            p.Answer,
		maxAttempts:       limits.MaxAttempts,
		now:               now,
		attemptsRemaining: limits.MaxAttempts,
		startedAt:         started,
		deadline:          started.Add(limits.MaxDuration),
		status:            domain.StatusPlaying,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Answer returns the hidden compound.
func (s *Session) Answer() domain.Compound {
	return s.answer
}

// SubmitGuess resolves formula against the session's catalog and grades it.
// An expired deadline is applied first, so a guess arriving after the deadline
// loses on time even if it would have been correct. Unknown formulas do not
// consume an attempt.
func (s *Session) SubmitGuess(formula string) (domain.Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkTimeoutLocked()
	if s.status.Terminal() {
		return domain.Guess{}, fmt.Errorf("%w: session %s is %s", domain.ErrInvalidState, s.id, s.status)
	}

	compound, ok := s.catalog.FindByFormula(formula)
	if !ok {
		return domain.Guess{}, fmt.Errorf("%w: %q", domain.ErrUnknownFormula, formula)
	}

	guess := domain.Guess{Compound: compound, Feedback: feedback.Compare(compound, s.answer)}
	s.guesses = append(s.guesses, guess)
	s.attemptsRemaining--

	switch {
	case guess.Feedback.IsCorrect:
		s.finishLocked(domain.StatusWonCorrect)
	case s.attemptsRemaining <= 0:
		s.finishLocked(domain.StatusLostAttempts)
	}
	return guess, nil
}

// CheckTimeout ends a playing session whose deadline has passed and reports
// whether it did so.
func (s *Session) CheckTimeout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkTimeoutLocked()
}

func (s *Session) checkTimeoutLocked() bool {
	if s.status != domain.StatusPlaying || s.now().Before(s.deadline) {
		return false
	}
	s.finishLocked(domain.StatusLostTimeout)
	return true
}

func (s *Session) finishLocked(status domain.Status) {
	s.status = status
	s.endedAt = s.now()
}

// Status returns the current state.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot copies the session state.
func (s *Session) Snapshot() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.SessionState {
	guesses := make([]domain.Guess, len(s.guesses))
	copy(guesses, s.guesses)
	return domain.SessionState{
		ID:                s.id,
		Player:            s.player,
		Answer:            s.answer,
		InitialHint:       s.answer.Labels.State,
		Guesses:           guesses,
		AttemptsRemaining: s.attemptsRemaining,
		MaxAttempts:       s.maxAttempts,
		StartedAt:         s.startedAt,
		Deadline:          s.deadline,
		EndedAt:           s.endedAt,
		Status:            s.status,
	}
}

// Remaining is the time left before the deadline, never negative.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return 0
	}
	if d := s.deadline.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

// Summary describes a finished session.
func (s *Session) Summary() (domain.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() {
		return domain.SessionSummary{}, fmt.Errorf("%w: session %s still playing", domain.ErrInvalidState, s.id)
	}
	return s.summaryLocked(), nil
}

func (s *Session) summaryLocked() domain.SessionSummary {
	guesses := make([]domain.Guess, len(s.guesses))
	copy(guesses, s.guesses)

	summary := domain.SessionSummary{
		SessionID:       s.id,
		Player:          s.player,
		Answer:          s.answer,
		Guesses:         guesses,
		Result:          domain.ResultFail,
		StartTime:       s.startedAt,
		EndTime:         s.endedAt,
		DurationSeconds: int64(math.Round(s.endedAt.Sub(s.startedAt).Seconds())),
	}
	switch s.status {
	case domain.StatusWonCorrect:
		summary.Result = domain.ResultSuccess
		summary.Reason = domain.ReasonCorrect
	case domain.StatusLostAttempts:
		summary.Reason = domain.ReasonAttempts
	case domain.StatusLostTimeout:
		summary.Reason = domain.ReasonTimer
	}
	return summary
}

// claimSummary hands out the summary exactly once, after the session ends.
func (s *Session) claimSummary() (domain.SessionSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.Terminal() || s.reported {
		return domain.SessionSummary{}, false
	}
	s.reported = true
	return s.summaryLocked(), true
}

// finishedBefore reports whether the session ended before t.
func (s *Session) finishedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Terminal() && s.endedAt.Before(t)
}
