package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"chemguess-service/internal/domain"
)

// ResultRecorder is the SummarySink that logs a finished session and
// refreshes the player's leaderboard entry from their logs.
type ResultRecorder struct {
	logs  *LogService
	board *LeaderboardService
}

func NewResultRecorder(logs *LogService, board *LeaderboardService) *ResultRecorder {
	return &ResultRecorder{logs: logs, board: board}
}

func (r *ResultRecorder) Record(ctx context.Context, summary domain.SessionSummary) error {
	// anonymous sessions are not tracked
	if strings.TrimSpace(summary.Player.ID) == "" {
		return nil
	}
	if _, err := r.logs.Append(ctx, summary); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	wins, total, err := r.logs.Stats(ctx, summary.Player.ID)
	if err != nil {
		return fmt.Errorf("log stats: %w", err)
	}
	_, err = r.board.Submit(ctx, ScoreInput{
		MachineID: summary.Player.ID,
		Username:  summary.Player.Username,
		Group:     summary.Player.Group,
		Wins:      float64(wins),
		Total:     float64(total),
	})
	if err != nil {
		return fmt.Errorf("submit score: %w", err)
	}
	return nil
}

// DefaultSinkBuffer is the queue length used by NewAsyncSink when none is given.
const DefaultSinkBuffer = 256

var (
	ErrSinkFull   = errors.New("summary queue full")
	ErrSinkClosed = errors.New("summary sink closed")
)

// AsyncSink hands summaries to next on a single background worker so slow
// stores never hold up a guess or a tick. When the queue is full the summary
// is dropped and ErrSinkFull returned.
type AsyncSink struct {
	next  SummarySink
	queue chan domain.SessionSummary
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsyncSink(next SummarySink, buffer int) *AsyncSink {
	if buffer <= 0 {
		buffer = DefaultSinkBuffer
	}
	s := &AsyncSink{
		next:  next,
		queue: make(chan domain.SessionSummary, buffer),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) Record(_ context.Context, summary domain.SessionSummary) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.queue <- summary:
		return nil
	default:
		return ErrSinkFull
	}
}

// Close stops accepting summaries and waits for the queued ones to be written.
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for summary := range s.queue {
		if err := s.next.Record(context.Background(), summary); err != nil {
			log.Printf("record summary for session %s: %v", summary.SessionID, err)
		}
	}
}
