package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/domain"
	"chemguess-service/internal/feedback"
)

// SessionRepository abstracts how live game sessions are held (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	List() []*Session
}

// CatalogRepository loads the compound catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (*catalog.Catalog, error)
	Invalidate(ctx context.Context) error
}

// Selector draws the answer for a new session.
type Selector interface {
	Draw(ctx context.Context) (domain.Compound, error)
}

// Resetter is implemented by selectors that keep drawn-ahead compounds and
// must drop them when the catalog changes.
type Resetter interface {
	Reset(ctx context.Context) error
}

// maxRedraws bounds how often Start empties the selector after drawing a
// compound the current catalog no longer has.
const maxRedraws = 2

// SummarySink receives every finished session once.
type SummarySink interface {
	Record(ctx context.Context, summary domain.SessionSummary) error
}

// GuessResult is the outcome of one guess.
type GuessResult struct {
	Guess     domain.Guess        `json:"guess"`
	Breakdown feedback.Breakdown  `json:"breakdown"`
	Session   domain.SessionState `json:"session"`
}

// GameService contains the game use cases.
type GameService struct {
	sessions SessionRepository
	catalogs CatalogRepository
	selector Selector
	sink     SummarySink
	limits   Limits
	now      func() time.Time
	ids      *IDGenerator
}

// GameOption configures a GameService.
type GameOption func(*GameService)

// WithLimits overrides DefaultLimits.
func WithLimits(limits Limits) GameOption {
	return func(s *GameService) { s.limits = limits }
}

// WithClock is used by tests for deterministic deadlines.
func WithClock(now func() time.Time) GameOption {
	return func(s *GameService) { s.now = now }
}

func NewGameService(store SessionRepository, catalogs CatalogRepository, selector Selector, sink SummarySink, opts ...GameOption) *GameService {
	s := &GameService{
		sessions: store,
		catalogs: catalogs,
		selector: selector,
		sink:     sink,
		limits:   DefaultLimits,
		now:      time.Now,
		ids:      NewIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start draws a fresh answer and opens a session for player.
func (s *GameService) Start(ctx context.Context, player domain.Player) (domain.SessionState, error) {
	cat, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.SessionState{}, err
	}
	answer, err := s.drawAnswer(ctx, cat)
	if err != nil {
		return domain.SessionState{}, err
	}

	session := NewSession(SessionParams{
		ID:      s.ids.New(),
		Player:  player,
		Catalog: cat,
		Answer:  answer,
		Limits:  s.limits,
		Now:     s.now,
	})
	s.sessions.Save(session)
	return session.Snapshot(), nil
}

// Guess submits formula to a session.
func (s *GameService) Guess(ctx context.Context, sessionID, formula string) (GuessResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return GuessResult{}, domain.ErrSessionNotFound
	}

	guess, err := session.SubmitGuess(formula)
	// the deadline may have expired inside SubmitGuess even when it fails
	s.report(ctx, session)
	if err != nil {
		return GuessResult{}, err
	}
	return GuessResult{
		Guess:     guess,
		Breakdown: feedback.Detail(guess.Compound, session.Answer()),
		Session:   session.Snapshot(),
	}, nil
}

// State returns a session snapshot after applying any expired deadline.
func (s *GameService) State(ctx context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	if session.CheckTimeout() {
		s.report(ctx, session)
	}
	return session.Snapshot(), nil
}

// CheckTimeout ends the session if its deadline passed.
func (s *GameService) CheckTimeout(ctx context.Context, sessionID string) (bool, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return false, domain.ErrSessionNotFound
	}
	expired := session.CheckTimeout()
	if expired {
		s.report(ctx, session)
	}
	return expired, nil
}

// Remaining applies any expired deadline and reports the time left; zero
// once the session has ended.
func (s *GameService) Remaining(ctx context.Context, sessionID string) (time.Duration, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	if session.CheckTimeout() {
		s.report(ctx, session)
	}
	return session.Remaining(), nil
}

// SweepTimeouts checks every live session and returns how many timed out.
// It is meant to run from a ticker at least once per second.
func (s *GameService) SweepTimeouts(ctx context.Context) int {
	expired := 0
	for _, session := range s.sessions.List() {
		if session.CheckTimeout() {
			expired++
			s.report(ctx, session)
		}
	}
	return expired
}

// Summary returns the summary of a finished session.
func (s *GameService) Summary(_ context.Context, sessionID string) (domain.SessionSummary, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSummary{}, domain.ErrSessionNotFound
	}
	return session.Summary()
}

// Forget drops a session.
func (s *GameService) Forget(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

// PruneFinished drops sessions that ended more than olderThan ago.
func (s *GameService) PruneFinished(_ context.Context, olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)
	pruned := 0
	for _, session := range s.sessions.List() {
		if session.finishedBefore(cutoff) {
			s.sessions.Delete(session.ID())
			pruned++
		}
	}
	return pruned
}

// Search finds compounds by formula or name substring.
func (s *GameService) Search(ctx context.Context, query string, limit int) ([]domain.Compound, error) {
	cat, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Search(query, limit), nil
}

// Lookup finds a compound by exact formula.
func (s *GameService) Lookup(ctx context.Context, formula string) (domain.Compound, bool, error) {
	cat, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.Compound{}, false, err
	}
	c, ok := cat.FindByFormula(formula)
	return c, ok, nil
}

// Compounds lists the whole catalog.
func (s *GameService) Compounds(ctx context.Context) ([]domain.Compound, error) {
	cat, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.All(), nil
}

// ReloadCatalog drops the cached catalog and loads it again. Running sessions
// keep the catalog they started with.
func (s *GameService) ReloadCatalog(ctx context.Context) (int, error) {
	if err := s.catalogs.Invalidate(ctx); err != nil {
		return 0, err
	}
	if r, ok := s.selector.(Resetter); ok {
		if err := r.Reset(ctx); err != nil {
			return 0, fmt.Errorf("reset selector: %w", err)
		}
	}
	cat, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return 0, err
	}
	return cat.Len(), nil
}

// drawAnswer draws the next answer and resolves it against cat, the catalog
// the session is pinned to. A miss means the selector still holds compounds
// from an older catalog, so it is emptied and drawn again.
func (s *GameService) drawAnswer(ctx context.Context, cat *catalog.Catalog) (domain.Compound, error) {
	for attempt := 0; ; attempt++ {
		drawn, err := s.selector.Draw(ctx)
		if err != nil {
			return domain.Compound{}, err
		}
		if answer, ok := cat.FindByFormula(drawn.Formula); ok {
			return answer, nil
		}
		if attempt == maxRedraws {
			return domain.Compound{}, fmt.Errorf("drawn %q is not in the catalog: %w", drawn.Formula, domain.ErrCatalogEmpty)
		}
		log.Printf("drawn compound %s left the catalog, resetting selector", drawn.Formula)
		if r, ok := s.selector.(Resetter); ok {
			if err := r.Reset(ctx); err != nil {
				return domain.Compound{}, fmt.Errorf("reset selector: %w", err)
			}
		}
	}
}

// report hands a finished session's summary to the sink once. Sink failures
// are logged and never affect the session.
func (s *GameService) report(ctx context.Context, session *Session) {
	summary, ok := session.claimSummary()
	if !ok || s.sink == nil {
		return
	}
	if err := s.sink.Record(context.WithoutCancel(ctx), summary); err != nil {
		log.Printf("record summary for session %s: %v", session.ID(), err)
	}
}
