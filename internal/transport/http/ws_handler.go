package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"chemguess-service/internal/app"
	"chemguess-service/internal/domain"
	"github.com/gorilla/websocket"
)

// DefaultTickInterval is how often a playing client is told the time left.
const DefaultTickInterval = time.Second

type WSHandler struct {
	games    *app.GameService
	upgrader websocket.Upgrader
	tick     time.Duration
}

// WSOption configures a WSHandler.
type WSOption func(*WSHandler)

// WithTickInterval overrides DefaultTickInterval.
func WithTickInterval(d time.Duration) WSOption {
	return func(h *WSHandler) {
		if d > 0 {
			h.tick = d
		}
	}
}

func NewWSHandler(games *app.GameService, opts ...WSOption) *WSHandler {
	h := &WSHandler{
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tick: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type guessPayload struct {
	Formula string `json:"formula"`
}

type tickPayload struct {
	SessionID        string `json:"sessionId"`
	RemainingSeconds int    `json:"remainingSeconds"`
}

type endedPayload struct {
	Summary domain.SessionSummary `json:"summary"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// wsGame tracks the one session a connection is playing.
type wsGame struct {
	mu    sync.Mutex
	id    string
	ended bool
}

func (g *wsGame) set(id string) {
	g.mu.Lock()
	g.id, g.ended = id, false
	g.mu.Unlock()
}

// active returns the session still waiting for its ended message.
func (g *wsGame) active() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id, g.id != "" && !g.ended
}

// claimEnd reports whether the caller is the first to end id.
func (g *wsGame) claimEnd(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.id != id || g.ended {
		return false
	}
	g.ended = true
	return true
}

// ServeWS upgrades HTTP requests to websockets and plays games over them.
// The player is identified by the playerId, name and group query parameters.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	player := domain.Player{
		ID:       q.Get("playerId"),
		Username: q.Get("name"),
		Group:    q.Get("group"),
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	tickerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblock the reader
				_ = conn.Close()
				return
			}
		}
	}()

	emit := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-writerDone:
		case <-closeSignals:
		}
	}
	emitError := func(err error) {
		emit("error", errorPayload{Message: err.Error()})
	}

	game := &wsGame{}
	// turn serializes guess handling with ticks so feedback precedes ended
	var turn sync.Mutex
	endIfFinished := func(id string) {
		summary, err := h.games.Summary(ctx, id)
		if err != nil {
			return
		}
		if game.claimEnd(id) {
			emit("ended", endedPayload{Summary: summary})
		}
	}

	go func() {
		defer close(tickerDone)
		ticker := time.NewTicker(h.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				turn.Lock()
				h.onTick(ctx, game, emit, endIfFinished)
				turn.Unlock()
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			turn.Lock()
			state, err := h.games.Start(ctx, player)
			if err != nil {
				emitError(err)
			} else {
				game.set(state.ID)
				emit("started", state)
			}
			turn.Unlock()
		case "guess":
			var payload guessPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Formula == "" {
				emit("error", errorPayload{Message: "invalid guess payload"})
				continue
			}
			id, _ := game.active()
			if id == "" {
				emit("error", errorPayload{Message: "no game started"})
				continue
			}
			turn.Lock()
			result, err := h.games.Guess(ctx, id, payload.Formula)
			if err != nil {
				emitError(err)
				if errors.Is(err, domain.ErrInvalidState) {
					endIfFinished(id)
				}
			} else {
				emit("feedback", result)
				if result.Session.Status.Terminal() {
					endIfFinished(id)
				}
			}
			turn.Unlock()
		default:
			emit("error", errorPayload{Message: "unsupported message type"})
		}
	}

	close(closeSignals)
	<-tickerDone
	close(send)
	<-writerDone
	if id, ok := game.active(); ok {
		log.Printf("player %q left session %s unfinished", player.ID, id)
	}
}

func (h *WSHandler) onTick(ctx context.Context, game *wsGame, emit func(string, any), endIfFinished func(string)) {
	id, ok := game.active()
	if !ok {
		return
	}
	left, err := h.games.Remaining(ctx, id)
	if err != nil {
		return
	}
	if left == 0 {
		endIfFinished(id)
		return
	}
	emit("tick", tickPayload{SessionID: id, RemainingSeconds: int(math.Ceil(left.Seconds()))})
}
