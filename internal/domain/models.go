package domain

import "time"

// Labels are the attributes a guess is scored on.
type Labels struct {
	AcidBase               string   `json:"acidBase"`
	HydrolysisElectrolysis string   `json:"hydrolysisElectrolysis"`
	State                  string   `json:"state"`
	Reactions              []string `json:"reactions"`
	Other                  string   `json:"other"`
}

// Compound is a catalog record. Formula is the case-insensitive key.
type Compound struct {
	Formula string `json:"formula"`
	Name    string `json:"name"`
	Labels  Labels `json:"labels"`
}

// Verdict grades one attribute of a guess.
type Verdict string

const (
	Correct Verdict = "correct"
	Partial Verdict = "partial"
	Wrong   Verdict = "wrong"
)

// Feedback is the per-attribute result of comparing a guess with the answer.
// Reactions is indexed by the guessed compound's reactions.
type Feedback struct {
	AcidBase               Verdict   `json:"acidBase"`
	HydrolysisElectrolysis Verdict   `json:"hydrolysisElectrolysis"`
	State                  Verdict   `json:"state"`
	Other                  Verdict   `json:"other"`
	Reactions              []Verdict `json:"reactions"`
	ReactionsOverall       Verdict   `json:"reactionsOverall"`
	IsCorrect              bool      `json:"isCorrect"`
}

// Status is the game session state.
type Status string

const (
	StatusPlaying      Status = "playing"
	StatusWonCorrect   Status = "won_correct"
	StatusLostAttempts Status = "lost_attempts"
	StatusLostTimeout  Status = "lost_timeout"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s != StatusPlaying
}

// Player identifies who is playing; ID is a stable per-machine identifier.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Group    string `json:"group"`
}

// Guess is a resolved guess together with its feedback.
type Guess struct {
	Compound Compound `json:"compound"`
	Feedback Feedback `json:"feedback"`
}

// SessionState is a point-in-time snapshot of a game session.
type SessionState struct {
	ID                string    `json:"id"`
	Player            Player    `json:"player"`
	Answer            Compound  `json:"-"`
	InitialHint       string    `json:"initialHint"`
	Guesses           []Guess   `json:"guesses"`
	AttemptsRemaining int       `json:"attemptsRemaining"`
	MaxAttempts       int       `json:"maxAttempts"`
	StartedAt         time.Time `json:"startedAt"`
	Deadline          time.Time `json:"deadline"`
	EndedAt           time.Time `json:"endedAt,omitempty"`
	Status            Status    `json:"status"`
}

// Result is the session outcome.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFail    Result = "fail"
)

// Reason explains why a session ended.
type Reason string

const (
	ReasonCorrect  Reason = "correct"
	ReasonAttempts Reason = "attempts"
	ReasonTimer    Reason = "timer"
)

// SessionSummary is emitted once a session is terminal.
type SessionSummary struct {
	SessionID       string    `json:"sessionId"`
	Player          Player    `json:"player"`
	Answer          Compound  `json:"answer"`
	Guesses         []Guess   `json:"guesses"`
	Result          Result    `json:"result"`
	Reason          Reason    `json:"reason"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationSeconds int64     `json:"durationSeconds"`
}

// CompoundRef is the short form of a compound kept in session logs.
type CompoundRef struct {
	Formula string `json:"formula"`
	Name    string `json:"name"`
}

// SessionLog is a persisted record of a finished session.
type SessionLog struct {
	ID              string        `json:"id"`
	PlayerID        string        `json:"playerId"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	DurationSeconds int64         `json:"durationSec"`
	Answer          CompoundRef   `json:"answer"`
	Guesses         []CompoundRef `json:"guesses"`
	Result          Result        `json:"result"`
	Reason          Reason        `json:"reason"`
}

// ScoreRecord is a player's aggregated standing.
type ScoreRecord struct {
	MachineID string    `json:"machineId"`
	Username  string    `json:"username"`
	Group     string    `json:"group"`
	Wins      int       `json:"wins"`
	Total     int       `json:"total"`
	Accuracy  float64   `json:"accuracy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GroupSummary aggregates scores for one group.
type GroupSummary struct {
	Group    string  `json:"group"`
	Wins     int     `json:"wins"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}
