// Package spectate streams live simulation snapshots to browser
// clients over websockets. Read-only: spectators never influence a
// run.
package spectate

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/OpFor-Mind/internal/ai"
)

const writeWait = 10 * time.Second

// AgentView is one agent's broadcast state.
type AgentView struct {
	ID     int     `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	State  string  `json:"state"`
	Belief string  `json:"belief"`
}

// Snapshot is one tick's full broadcast frame.
type Snapshot struct {
	Type    string      `json:"type"`
	Tick    int         `json:"tick"`
	Agents  []AgentView `json:"agents"`
	TargetX float64     `json:"targetX"`
	TargetY float64     `json:"targetY"`
}

type subscriber struct {
	conn *websocket.Conn
}

// Hub fans simulation snapshots out to connected spectators. Slow or
// broken connections are dropped rather than allowed to stall the
// tick loop.
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades a spectator connection and registers it.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("spectate upgrade failed", "err", err)
		return
	}
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("spectator connected", "remote", conn.RemoteAddr())

	// Drain reads so pings and close frames are processed.
	go func() {
		defer h.drop(sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one frame to every spectator.
func (h *Hub) Broadcast(snap Snapshot) {
	snap.Type = "state"
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("snapshot marshal", "err", err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(sub)
		}
	}
}

// SpectatorCount returns the number of connected clients.
func (h *Hub) SpectatorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()
	for _, sub := range subs {
		sub.conn.Close()
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// SnapshotArena builds a broadcast frame from the arena's current
// state.
func SnapshotArena(ar *ai.Arena) Snapshot {
	snap := Snapshot{
		Type:    "state",
		Tick:    ar.Tick,
		TargetX: ar.Target().Pos.X,
		TargetY: ar.Target().Pos.Y,
	}
	for _, a := range ar.Engine.Agents() {
		snap.Agents = append(snap.Agents, AgentView{
			ID:     a.ID,
			Label:  a.Label,
			X:      a.Pos.X,
			Y:      a.Pos.Y,
			Health: a.Health,
			State:  a.State.String(),
			Belief: a.BeliefBand().String(),
		})
	}
	return snap
}
