package http

import (
	"context"
	"testing"
	"time"

	"chemguess-service/internal/app"
	"github.com/gorilla/websocket"
)

func TestWebSocketGameFlow(t *testing.T) {
	env := newTestEnv(t, "H2SO4", app.DefaultLimits, 50*time.Millisecond)

	u := "ws" + env.server.URL[len("http"):] + "/ws?playerId=m1&name=Alice&group=g1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	started := readUntil(conn, t, "started")
	if started["initialHint"] != "液体" || started["status"] != "playing" {
		t.Fatalf("unexpected started payload %+v", started)
	}
	if _, leaked := started["answer"]; leaked {
		t.Fatalf("answer must not be sent to the client")
	}

	tick := readUntil(conn, t, "tick")
	if secs, _ := tick["remainingSeconds"].(float64); secs <= 0 || secs > 120 {
		t.Fatalf("unexpected remaining seconds %v", tick["remainingSeconds"])
	}

	send := func(formula string) {
		t.Helper()
		msg := map[string]any{"type": "guess", "payload": map[string]any{"formula": formula}}
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write guess: %v", err)
		}
	}

	send("Unobtainium")
	readUntil(conn, t, "error")

	send("HCl")
	feedback := readUntil(conn, t, "feedback")
	session, _ := feedback["session"].(map[string]any)
	if session["attemptsRemaining"] != float64(9) {
		t.Fatalf("expected 9 attempts left, got %v", session["attemptsRemaining"])
	}

	send("h2so4")
	readUntil(conn, t, "feedback")
	ended := readUntil(conn, t, "ended")
	summary, _ := ended["summary"].(map[string]any)
	if summary["result"] != "success" || summary["reason"] != "correct" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	waitFor(t, func() bool {
		logs, _ := env.logs.List(context.Background(), "m1", 0)
		return len(logs) == 1
	})
}

func TestWebSocketTimeoutEndsGame(t *testing.T) {
	limits := app.Limits{MaxAttempts: 10, MaxDuration: 200 * time.Millisecond}
	env := newTestEnv(t, "H2SO4", limits, 20*time.Millisecond)

	u := "ws" + env.server.URL[len("http"):] + "/ws?playerId=m2"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "start"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	readUntil(conn, t, "started")
	ended := readUntil(conn, t, "ended")
	summary, _ := ended["summary"].(map[string]any)
	if summary["result"] != "fail" || summary["reason"] != "timer" {
		t.Fatalf("expected timer loss, got %+v", summary)
	}
}

func TestWebSocketGuessBeforeStart(t *testing.T) {
	env := newTestEnv(t, "H2SO4", app.DefaultLimits, time.Second)

	u := "ws" + env.server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "guess", "payload": map[string]any{"formula": "HCl"}}); err != nil {
		t.Fatalf("write guess: %v", err)
	}
	msg := readUntil(conn, t, "error")
	if msg["message"] != "no game started" {
		t.Fatalf("unexpected error %+v", msg)
	}
}

// readUntil skips messages until one of type want arrives.
func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}
