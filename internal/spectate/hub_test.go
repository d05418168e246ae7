package spectate

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/OpFor-Mind/internal/ai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesSpectator(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	conn := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	snap := Snapshot{
		Type: "state",
		Tick: 42,
		Agents: []AgentView{
			{ID: 0, Label: "A0", X: 100, Y: 360, Health: 100, State: "combat", Belief: "high"},
		},
		TargetX: 400,
		TargetY: 360,
	}
	hub.Broadcast(snap)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "state" || got.Tick != 42 {
		t.Fatalf("frame = %+v", got)
	}
	if len(got.Agents) != 1 || got.Agents[0].State != "combat" || got.Agents[0].Belief != "high" {
		t.Fatalf("agents = %+v", got.Agents)
	}
}

func TestSpectatorCountTracksConnections(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	if n := hub.SpectatorCount(); n != 0 {
		t.Fatalf("initial count = %d", n)
	}

	conn := dialHub(t, hub)
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)
}

func TestSnapshotArena(t *testing.T) {
	ar := ai.NewArena(
		ai.WithArenaSize(1280, 720),
		ai.WithAgent(ai.ClassRifle, 100, 360),
		ai.WithTarget(400, 360),
	)
	ar.RunTicks(5)

	snap := SnapshotArena(ar)
	if snap.Type != "state" {
		t.Fatalf("type = %q", snap.Type)
	}
	if snap.Tick != 5 {
		t.Fatalf("tick = %d, want 5", snap.Tick)
	}
	if len(snap.Agents) != 1 {
		t.Fatalf("agents = %d, want 1", len(snap.Agents))
	}
	av := snap.Agents[0]
	if av.Label != "A0" || av.Health != 100 {
		t.Fatalf("agent view = %+v", av)
	}
	if av.State == "" || av.Belief == "" {
		t.Fatalf("state/belief unset: %+v", av)
	}
	if snap.TargetX != 400 || snap.TargetY != 360 {
		t.Fatalf("target = (%.0f, %.0f)", snap.TargetX, snap.TargetY)
	}
}

// waitForSubscribers polls until the hub sees the expected number of
// connections; registration happens on the server goroutine.
func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SpectatorCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("spectator count never reached %d (have %d)", want, hub.SpectatorCount())
}
