package ai

import "testing"

func testAgent(class AgentClass, pos Vec2, cfg *Tuning) *Agent {
	return NewAgent(0, pos, DefaultLoadout(class), cfg)
}

func TestGrenade_ThrowRejectedInsideSafetyDistance(t *testing.T) {
	cfg := DefaultTuning()
	g := NewGrenadeComponent(cfg)
	a := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)

	// Target well inside blast radius + safety margin.
	a.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{180, 100}, Strength: 1, Tick: 0}, cfg)
	if _, ok := g.Target(a, TriggerCriticalHealth); ok {
		t.Fatal("throw at 80px accepted; safety distance is 130px")
	}

	// The same trigger clears once the target is past the unsafe band.
	a.Belief.Position = Vec2{400, 100}
	if _, ok := g.Target(a, TriggerCriticalHealth); !ok {
		t.Fatal("throw at 300px rejected")
	}
}

func TestGrenade_PassageThrowIgnoresSafetyBand(t *testing.T) {
	cfg := DefaultTuning()
	g := NewGrenadeComponent(cfg)
	a := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)
	a.Facing = Vec2{1, 0}

	// Passage clearing aims a fixed point ahead, not at the adversary,
	// even when the belief position sits dangerously close.
	a.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{150, 100}, Strength: 1, Tick: 0}, cfg)
	target, ok := g.Target(a, TriggerPassageAhead)
	if !ok {
		t.Fatal("passage throw rejected")
	}
	want := Vec2{100 + cfg.PassageThrowDist, 100}
	if target != want {
		t.Fatalf("passage throw at %v, want %v", target, want)
	}
}

func TestGrenade_CooldownsDifferByTriggerKind(t *testing.T) {
	cfg := DefaultTuning()
	g := NewGrenadeComponent(cfg)

	a := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)
	g.CommitThrow(a, TriggerSustainedFire, 0)
	reactiveUntil := a.grenadeCooldownUntil

	b := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)
	g.CommitThrow(b, TriggerPassageAhead, 0)
	passageUntil := b.grenadeCooldownUntil

	if reactiveUntil != SecondsToTicks(cfg.GrenadeCooldownSeconds) {
		t.Fatalf("reactive cooldown %d ticks, want %d", reactiveUntil, SecondsToTicks(cfg.GrenadeCooldownSeconds))
	}
	if passageUntil != SecondsToTicks(cfg.PassageCooldownSeconds) {
		t.Fatalf("passage cooldown %d ticks, want %d", passageUntil, SecondsToTicks(cfg.PassageCooldownSeconds))
	}
	if passageUntil >= reactiveUntil {
		t.Fatal("passage throws must recycle faster than reactive throws")
	}
}

func TestGrenade_ReadyGatesOnInventoryAndCooldown(t *testing.T) {
	cfg := DefaultTuning()
	g := NewGrenadeComponent(cfg)
	a := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)
	a.Health = 10 // critical
	a.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{500, 100}, Strength: 1, Tick: 0}, cfg)

	ws := WorldState{Health: HealthCritical, Belief: BandHigh}
	if got := g.Ready(a, ws, 0); got != TriggerCriticalHealth {
		t.Fatalf("got %s, want critical_health", got)
	}

	g.CommitThrow(a, TriggerCriticalHealth, 0)
	if got := g.Ready(a, ws, 1); got != TriggerNone {
		t.Fatalf("trigger %s fired during cooldown", got)
	}

	a.Grenades = 0
	a.grenadeCooldownUntil = 0
	if got := g.Ready(a, ws, 1000); got != TriggerNone {
		t.Fatalf("trigger %s fired with empty inventory", got)
	}
}

func TestGrenade_CriticalHealthOutranksOtherTriggers(t *testing.T) {
	cfg := DefaultTuning()
	g := NewGrenadeComponent(cfg)
	a := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)
	a.Belief.Update(Observation{Kind: ObsSight, Origin: Vec2{350, 100}, Strength: 1, Tick: 0}, cfg)

	// Satisfy the specialist sight-band trigger and the critical-health
	// trigger simultaneously; priority order must pick critical health.
	tick := 1000
	ws := WorldState{Health: HealthCritical, Belief: BandHigh, TargetVisible: true}
	if got := g.Ready(a, ws, tick); got != TriggerCriticalHealth {
		t.Fatalf("got %s, want critical_health", got)
	}

	// With healthy status the same situation resolves to the sight band.
	ws.Health = HealthHealthy
	if got := g.Ready(a, ws, tick); got != TriggerSightSafeBand {
		t.Fatalf("got %s, want sight_safe_band", got)
	}
}

func TestGrenade_AllyDeathWindowSlides(t *testing.T) {
	cfg := DefaultTuning()
	g := NewGrenadeComponent(cfg)
	a := testAgent(ClassGrenadier, Vec2{100, 100}, cfg)

	a.NoteAllyDeath(0)
	a.NoteAllyDeath(SecondsToTicks(1))
	if got := g.allyDeathsInWindow(a, SecondsToTicks(2)); got != 2 {
		t.Fatalf("fresh deaths counted %d, want 2", got)
	}
	// Both deaths fall out of the window.
	late := SecondsToTicks(cfg.AllyDeathWindowSeconds + 5)
	if got := g.allyDeathsInWindow(a, late); got != 0 {
		t.Fatalf("expired deaths counted %d, want 0", got)
	}
}
