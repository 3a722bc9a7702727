package app

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"chemguess-service/internal/domain"
)

const (
	// AllGroups selects every group in Leaderboard.
	AllGroups        = "ALL"
	defaultUsername  = "未命名"
	defaultGroup     = "未分组"
	leaderboardLimit = 100
)

// ScoreRepository persists one score record per machine.
type ScoreRepository interface {
	Upsert(ctx context.Context, record domain.ScoreRecord) error
	Get(ctx context.Context, machineID string) (domain.ScoreRecord, bool, error)
	List(ctx context.Context) ([]domain.ScoreRecord, error)
}

// ScoreInput is an untrusted score submission.
type ScoreInput struct {
	MachineID string  `json:"machineId"`
	Username  string  `json:"username"`
	Group     string  `json:"group"`
	Wins      float64 `json:"wins"`
	Total     float64 `json:"total"`
}

// LeaderboardService ranks players by accuracy.
type LeaderboardService struct {
	scores ScoreRepository
	now    func() time.Time
}

func NewLeaderboardService(scores ScoreRepository) *LeaderboardService {
	return &LeaderboardService{scores: scores, now: time.Now}
}

// Submit normalizes in and overwrites the machine's record with it.
func (s *LeaderboardService) Submit(ctx context.Context, in ScoreInput) (domain.ScoreRecord, error) {
	record := normalizeScore(in)
	if record.MachineID == "" {
		return domain.ScoreRecord{}, domain.ErrPlayerRequired
	}
	record.UpdatedAt = s.now()
	if err := s.scores.Upsert(ctx, record); err != nil {
		return domain.ScoreRecord{}, err
	}
	return record, nil
}

// Leaderboard ranks the players of group, or everyone for AllGroups.
func (s *LeaderboardService) Leaderboard(ctx context.Context, group string) ([]domain.ScoreRecord, error) {
	all, err := s.scores.List(ctx)
	if err != nil {
		return nil, err
	}
	group = strings.TrimSpace(group)
	out := make([]domain.ScoreRecord, 0, len(all))
	for _, r := range all {
		if group != "" && group != AllGroups && r.Group != group {
			continue
		}
		r.Accuracy = accuracy(r.Wins, r.Total)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ranksBefore(out[i].Accuracy, out[i].Wins, out[i].Total, out[j].Accuracy, out[j].Wins, out[j].Total)
	})
	if len(out) > leaderboardLimit {
		out = out[:leaderboardLimit]
	}
	return out, nil
}

// Groups aggregates wins and totals per group.
func (s *LeaderboardService) Groups(ctx context.Context) ([]domain.GroupSummary, error) {
	all, err := s.scores.List(ctx)
	if err != nil {
		return nil, err
	}
	byGroup := make(map[string]*domain.GroupSummary)
	var order []string
	for _, r := range all {
		key := r.Group
		if key == "" {
			key = defaultGroup
		}
		g, ok := byGroup[key]
		if !ok {
			g = &domain.GroupSummary{Group: key}
			byGroup[key] = g
			order = append(order, key)
		}
		g.Wins += r.Wins
		g.Total += r.Total
	}
	out := make([]domain.GroupSummary, 0, len(order))
	for _, key := range order {
		g := *byGroup[key]
		g.Accuracy = accuracy(g.Wins, g.Total)
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return ranksBefore(out[i].Accuracy, out[i].Wins, out[i].Total, out[j].Accuracy, out[j].Wins, out[j].Total)
	})
	return out, nil
}

// Profile returns one machine's record.
func (s *LeaderboardService) Profile(ctx context.Context, machineID string) (domain.ScoreRecord, bool, error) {
	machineID = strings.TrimSpace(machineID)
	if machineID == "" {
		return domain.ScoreRecord{}, false, nil
	}
	r, ok, err := s.scores.Get(ctx, machineID)
	if err != nil || !ok {
		return domain.ScoreRecord{}, ok, err
	}
	r.Accuracy = accuracy(r.Wins, r.Total)
	return r, true, nil
}

// ranksBefore orders by accuracy desc, then wins desc, then total asc.
func ranksBefore(accA float64, winsA, totalA int, accB float64, winsB, totalB int) bool {
	if accA != accB {
		return accA > accB
	}
	if winsA != winsB {
		return winsA > winsB
	}
	return totalA < totalB
}

func accuracy(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func normalizeScore(in ScoreInput) domain.ScoreRecord {
	username := sanitize(in.Username, 40)
	if username == "" {
		username = defaultUsername
	}
	group := sanitize(in.Group, 40)
	if group == "" {
		group = defaultGroup
	}
	wins, total := floorCount(in.Wins), floorCount(in.Total)
	if wins > total {
		wins = total
	}
	return domain.ScoreRecord{
		MachineID: sanitize(in.MachineID, 120),
		Username:  username,
		Group:     group,
		Wins:      wins,
		Total:     total,
	}
}

// floorCount floors a submitted count into [0, MaxInt32].
func floorCount(v float64) int {
	if !(v > 0) {
		return 0
	}
	return int(math.Min(math.Floor(v), math.MaxInt32))
}

// sanitize flattens control whitespace, trims and truncates to maxLen runes.
func sanitize(s string, maxLen int) string {
	s = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen])
	}
	return s
}
