package ai

import (
	"math"
	"testing"
)

func TestSquad_IntelMergesWithAttenuation(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	reporter := NewAgent(0, Vec2{100, 100}, DefaultLoadout(ClassRifle), cfg)
	receiver := NewAgent(1, Vec2{400, 400}, DefaultLoadout(ClassRifle), cfg)

	reporter.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{800, 800}, Strength: 0.9, Tick: 0}, cfg)
	sc.Broadcast(reporter, 0)
	sc.EndTick()

	if !sc.Merge(receiver, 1) {
		t.Fatal("receiver did not merge published intel")
	}
	want := 0.9 * cfg.IntelAttenuation
	if math.Abs(receiver.Belief.Confidence-want) > 1e-9 {
		t.Fatalf("merged confidence %.3f, want %.3f", receiver.Belief.Confidence, want)
	}
	if receiver.Belief.Position != (Vec2{800, 800}) {
		t.Fatalf("merged position %v", receiver.Belief.Position)
	}
	if !receiver.SquadContact {
		t.Fatal("squad contact flag not raised")
	}
}

func TestSquad_BroadcastsReadOnNextTickOnly(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	reporter := NewAgent(0, Vec2{100, 100}, DefaultLoadout(ClassRifle), cfg)
	receiver := NewAgent(1, Vec2{400, 400}, DefaultLoadout(ClassRifle), cfg)
	reporter.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{800, 800}, Strength: 1, Tick: 0}, cfg)

	sc.Broadcast(reporter, 0)
	// Same tick: the board still shows last tick's (empty) snapshot.
	if sc.Merge(receiver, 0) {
		t.Fatal("intel visible in the tick it was broadcast")
	}
	sc.EndTick()
	if !sc.Merge(receiver, 1) {
		t.Fatal("intel missing one tick after broadcast")
	}
}

func TestSquad_QuietBelowMinimumConfidence(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	reporter := NewAgent(0, Vec2{100, 100}, DefaultLoadout(ClassRifle), cfg)
	reporter.Belief.Update(Observation{Kind: ObsFootstep, Origin: Vec2{800, 800}, Strength: 0.5, Tick: 0}, cfg)
	if reporter.Belief.Confidence >= cfg.BroadcastMinConfidence {
		t.Fatalf("test setup broken: confidence %.2f", reporter.Belief.Confidence)
	}

	sc.Broadcast(reporter, 0)
	sc.EndTick()
	if _, ok := sc.BestShared(1); ok {
		t.Fatal("low-confidence estimate reached the net")
	}
}

func TestSquad_StrongerIntelCannotBeSmotheredByWeaker(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	receiver := NewAgent(2, Vec2{400, 400}, DefaultLoadout(ClassRifle), cfg)
	receiver.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{200, 200}, Strength: 1, Tick: 0}, cfg)

	weak := NewAgent(0, Vec2{100, 100}, DefaultLoadout(ClassRifle), cfg)
	weak.Belief.Update(Observation{Kind: ObsGunshot, Origin: Vec2{900, 900}, Strength: 0.6, Tick: 0}, cfg)
	sc.Broadcast(weak, 0)
	sc.EndTick()

	if sc.Merge(receiver, 1) {
		t.Fatal("weaker shared intel overwrote a fresher direct sighting")
	}
	if receiver.Belief.Position != (Vec2{200, 200}) {
		t.Fatalf("belief position moved to %v", receiver.Belief.Position)
	}
}

func TestSquad_ClaimFirstComeWins(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	p := Vec2{300, 300}
	if !sc.Claim(0, p) {
		t.Fatal("first claim refused")
	}
	// A near-identical point falls into the same claim cell.
	if sc.Claim(1, p.Add(Vec2{4, 4})) {
		t.Fatal("second agent won an already-claimed cell")
	}
	// The owner can re-claim its own cell.
	if !sc.Claim(0, p) {
		t.Fatal("owner's repeat claim refused")
	}

	// Claims reset every tick.
	sc.EndTick()
	if !sc.Claim(1, p) {
		t.Fatal("claim table not cleared at end of tick")
	}
}

func TestSquad_ClaimedNearbyFeedsClusterPenalty(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	sc.Claim(0, Vec2{300, 300})
	if n := sc.ClaimedNearby(1, Vec2{300, 300}); n != 1 {
		t.Fatalf("nearby claims %d, want 1", n)
	}
	// The asking agent's own claim never counts against it.
	if n := sc.ClaimedNearby(0, Vec2{300, 300}); n != 0 {
		t.Fatalf("own claim counted: %d", n)
	}
}

func TestSquad_DeathRemovesIntelAndNotifiesWitnesses(t *testing.T) {
	cfg := DefaultTuning()
	sc := NewSquadCoordinator(cfg, NewDecisionLog(false))

	dead := NewAgent(0, Vec2{100, 100}, DefaultLoadout(ClassRifle), cfg)
	near := NewAgent(1, Vec2{300, 300}, DefaultLoadout(ClassRifle), cfg)
	far := NewAgent(2, Vec2{5000, 5000}, DefaultLoadout(ClassRifle), cfg)

	dead.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{800, 800}, Strength: 1, Tick: 0}, cfg)
	sc.Broadcast(dead, 0)
	sc.EndTick()

	dead.Health = 0
	sc.ReportDeath(dead, []*Agent{dead, near, far}, 10)

	if _, ok := sc.BestShared(1); ok {
		t.Fatal("dead reporter's intel still on the board")
	}
	g := NewGrenadeComponent(cfg)
	if g.allyDeathsInWindow(near, 10) != 1 {
		t.Fatal("witness in earshot did not record the death")
	}
	if g.allyDeathsInWindow(far, 10) != 0 {
		t.Fatal("witness out of earshot recorded the death")
	}
}
