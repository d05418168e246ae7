package ai

import "fmt"

// SquadIntel is one shared position estimate: where a reporter believes
// the adversary is and how sure they are. Records are append/overwrite
// only — receivers never mutate another agent's entry, so the board
// needs no locking: everyone reads the previous tick's published set.
type SquadIntel struct {
	Position   Vec2
	Confidence float64
	ReporterID int
	Tick       int
}

// SquadCoordinator shares intel between agents with per-hop confidence
// attenuation, and arbitrates position claims so two agents never pick
// the same cover or intercept point in one tick.
type SquadCoordinator struct {
	cfg *Tuning
	log *DecisionLog

	// published is last tick's intel board (read side); incoming
	// collects this tick's broadcasts (write side). Swapped at EndTick.
	published map[int]SquadIntel
	incoming  map[int]SquadIntel

	// claims maps a claim cell to the claiming agent for this tick.
	claims map[[2]int]int
}

// NewSquadCoordinator creates an empty coordinator.
func NewSquadCoordinator(cfg *Tuning, log *DecisionLog) *SquadCoordinator {
	return &SquadCoordinator{
		cfg:       cfg,
		log:       log,
		published: make(map[int]SquadIntel),
		incoming:  make(map[int]SquadIntel),
		claims:    make(map[[2]int]int),
	}
}

// Broadcast publishes one agent's current best estimate. Agents below
// the minimum confidence stay off the net.
func (sc *SquadCoordinator) Broadcast(a *Agent, tick int) {
	if !a.Belief.HasPosition || a.Belief.Confidence < sc.cfg.BroadcastMinConfidence {
		return
	}
	sc.incoming[a.ID] = SquadIntel{
		Position:   a.Belief.Position,
		Confidence: a.Belief.Confidence,
		ReporterID: a.ID,
		Tick:       tick,
	}
}

// BestShared returns the strongest intel on last tick's board from any
// reporter other than the asking agent.
func (sc *SquadCoordinator) BestShared(agentID int) (SquadIntel, bool) {
	best := SquadIntel{ReporterID: -1}
	for id, intel := range sc.published {
		if id == agentID {
			continue
		}
		if best.ReporterID < 0 || intel.Confidence > best.Confidence ||
			(intel.Confidence == best.Confidence && id < best.ReporterID) {
			best = intel
		}
	}
	return best, best.ReporterID >= 0
}

// Merge offers last tick's best shared intel to one agent's belief.
// The incoming confidence is attenuated by the per-hop factor and only
// applied when it beats the agent's own already-decayed confidence.
// Returns true when the belief was overwritten.
func (sc *SquadCoordinator) Merge(a *Agent, tick int) bool {
	intel, ok := sc.BestShared(a.ID)
	if !ok {
		return false
	}
	obs := Observation{
		Kind:     ObsSquadIntel,
		Origin:   intel.Position,
		Strength: intel.Confidence * sc.cfg.IntelAttenuation,
		Tick:     tick,
	}
	if !a.Belief.Update(obs, a.cfg) {
		return false
	}
	a.SquadContact = true
	if sc.log != nil {
		sc.log.Add(tick, a.Label, "squad", "intel_merge",
			fmt.Sprintf("from A%d conf=%.2f", intel.ReporterID, obs.Strength), obs.Strength)
	}
	return true
}

// claimKey coarsens a position so near-identical points collide.
func (sc *SquadCoordinator) claimKey(p Vec2) [2]int {
	r := sc.cfg.ClaimRadius
	return [2]int{int(p.X / r), int(p.Y / r)}
}

// Claim reserves a position for an agent this tick. The first claimant
// wins; a repeat claim by the same agent succeeds. Losers must re-query
// for their next-best candidate within the same tick.
func (sc *SquadCoordinator) Claim(agentID int, p Vec2) bool {
	key := sc.claimKey(p)
	if owner, taken := sc.claims[key]; taken {
		return owner == agentID
	}
	sc.claims[key] = agentID
	return true
}

// ClaimedNearby counts claims within the clustering radius of p,
// excluding the asking agent's own. Feeds the cover anti-cluster term.
func (sc *SquadCoordinator) ClaimedNearby(agentID int, p Vec2) int {
	n := 0
	for key, owner := range sc.claims {
		if owner == agentID {
			continue
		}
		center := Vec2{
			X: (float64(key[0]) + 0.5) * sc.cfg.ClaimRadius,
			Y: (float64(key[1]) + 0.5) * sc.cfg.ClaimRadius,
		}
		if center.Dist(p) <= sc.cfg.CoverClusterRadius {
			n++
		}
	}
	return n
}

// EndTick publishes this tick's broadcasts for next tick's readers and
// resets the claim table. Claims are strictly per-tick arbitration —
// there is no persistent ownership to unwind.
func (sc *SquadCoordinator) EndTick() {
	sc.published = sc.incoming
	sc.incoming = make(map[int]SquadIntel)
	sc.claims = make(map[[2]int]int)
}

// ReportDeath removes a dead reporter's intel and notifies witnesses
// within earshot for their ally-death grenade trigger.
func (sc *SquadCoordinator) ReportDeath(dead *Agent, witnesses []*Agent, tick int) {
	delete(sc.published, dead.ID)
	delete(sc.incoming, dead.ID)
	for _, w := range witnesses {
		if w.ID == dead.ID || !w.Alive() {
			continue
		}
		if w.Pos.Dist(dead.Pos) <= sc.cfg.HearingMaxRange {
			w.NoteAllyDeath(tick)
		}
	}
}
