package app

import (
	"context"
	"strings"

	"chemguess-service/internal/domain"
)

// DefaultMaxLogsPerPlayer caps how many session logs a player keeps.
const DefaultMaxLogsPerPlayer = 200

// LogRepository persists finished-session logs, newest first.
type LogRepository interface {
	Add(ctx context.Context, entry domain.SessionLog) error
	// List returns the player's logs newest first; limit <= 0 means all.
	List(ctx context.Context, playerID string, limit int) ([]domain.SessionLog, error)
	Delete(ctx context.Context, playerID, id string) error
	Clear(ctx context.Context, playerID string) error
	// Trim keeps only the newest keep logs of the player.
	Trim(ctx context.Context, playerID string, keep int) error
}

// LogService records and reads session logs.
type LogService struct {
	repo LogRepository
	max  int
	ids  *IDGenerator
}

func NewLogService(repo LogRepository, maxPerPlayer int) *LogService {
	if maxPerPlayer <= 0 {
		maxPerPlayer = DefaultMaxLogsPerPlayer
	}
	return &LogService{repo: repo, max: maxPerPlayer, ids: NewIDGenerator()}
}

// Append stores a log built from summary.
func (s *LogService) Append(ctx context.Context, summary domain.SessionSummary) (domain.SessionLog, error) {
	if strings.TrimSpace(summary.Player.ID) == "" {
		return domain.SessionLog{}, domain.ErrPlayerRequired
	}
	entry := domain.SessionLog{
		ID:              s.ids.New(),
		PlayerID:        summary.Player.ID,
		StartTime:       summary.StartTime,
		EndTime:         summary.EndTime,
		DurationSeconds: summary.DurationSeconds,
		Answer:          ref(summary.Answer),
		Guesses:         make([]domain.CompoundRef, 0, len(summary.Guesses)),
		Result:          summary.Result,
		Reason:          summary.Reason,
	}
	for _, g := range summary.Guesses {
		entry.Guesses = append(entry.Guesses, ref(g.Compound))
	}
	if err := s.repo.Add(ctx, entry); err != nil {
		return domain.SessionLog{}, err
	}
	if err := s.repo.Trim(ctx, entry.PlayerID, s.max); err != nil {
		return domain.SessionLog{}, err
	}
	return entry, nil
}

// List returns the player's logs, newest first.
func (s *LogService) List(ctx context.Context, playerID string, limit int) ([]domain.SessionLog, error) {
	if strings.TrimSpace(playerID) == "" {
		return nil, domain.ErrPlayerRequired
	}
	return s.repo.List(ctx, playerID, limit)
}

// Remove deletes one log.
func (s *LogService) Remove(ctx context.Context, playerID, id string) error {
	return s.repo.Delete(ctx, playerID, id)
}

// Clear deletes every log of the player.
func (s *LogService) Clear(ctx context.Context, playerID string) error {
	return s.repo.Clear(ctx, playerID)
}

// Stats counts the player's wins and sessions from their logs.
func (s *LogService) Stats(ctx context.Context, playerID string) (wins, total int, err error) {
	logs, err := s.repo.List(ctx, playerID, 0)
	if err != nil {
		return 0, 0, err
	}
	for _, l := range logs {
		if l.Result == domain.ResultSuccess {
			wins++
		}
	}
	return wins, len(logs), nil
}

func ref(c domain.Compound) domain.CompoundRef {
	return domain.CompoundRef{Formula: c.Formula, Name: c.Name}
}
