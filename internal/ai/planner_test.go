package ai

import "testing"

func TestPlanner_FallbackIsPatrol(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{})
	if act.Name != "patrol" {
		t.Fatalf("empty fact table selected %q, want patrol", act.Name)
	}
	if act.State != StateIdle {
		t.Fatalf("patrol drives %s, want %s", act.State, StateIdle)
	}
}

func TestPlanner_AlwaysReturnsAnAction(t *testing.T) {
	p := NewPlanner()
	// Sweep an assortment of fact tables; every one must plan.
	states := []WorldState{
		{},
		{TargetVisible: true, HasAmmo: true},
		{UnderFire: true},
		{Health: HealthCritical},
		{Belief: BandHigh, Suppressed: true, InCover: true},
		{GrenadeThreat: true, Stuck: true},
	}
	for i, ws := range states {
		if act := p.Select(ws); act.Name == "" {
			t.Fatalf("case %d produced no action", i)
		}
	}
}

func TestPlanner_Deterministic(t *testing.T) {
	p := NewPlanner()
	ws := WorldState{Health: HealthHealthy, TargetVisible: true, HasAmmo: true, UnderFire: true}
	first := p.Select(ws).Name
	for i := 0; i < 50; i++ {
		if got := p.Select(ws).Name; got != first {
			t.Fatalf("selection flapped: %q then %q", first, got)
		}
	}
}

func TestPlanner_EngageWhenVisibleWithAmmo(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{Health: HealthHealthy, TargetVisible: true, HasAmmo: true, Belief: BandHigh})
	if act.Name != "engage" {
		t.Fatalf("got %q, want engage", act.Name)
	}
	if act.State != StateCombat {
		t.Fatalf("engage drives %s, want %s", act.State, StateCombat)
	}
}

func TestPlanner_SeekCoverUnderFire(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{Health: HealthHealthy, TargetVisible: true, HasAmmo: true, UnderFire: true, Belief: BandHigh})
	if act.Name != "seek_cover" {
		t.Fatalf("got %q, want seek_cover", act.Name)
	}
}

func TestPlanner_LastStandGrenadeBeatsRetreat(t *testing.T) {
	p := NewPlanner()

	// Critical health with a ready grenade: the throw outranks running.
	ws := WorldState{
		Health:         HealthCritical,
		Belief:         BandMedium,
		Grenades:       1,
		GrenadeTrigger: TriggerCriticalHealth,
	}
	act := p.Select(ws)
	if act.Name != "grenade_last_stand" {
		t.Fatalf("got %q, want grenade_last_stand", act.Name)
	}

	// Same situation with no grenade available falls back to retreat.
	ws.Grenades = 0
	ws.GrenadeTrigger = TriggerNone
	act = p.Select(ws)
	if act.Name != "retreat_critical" {
		t.Fatalf("got %q, want retreat_critical", act.Name)
	}
}

func TestPlanner_PursueAtMediumBelief(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{Health: HealthHealthy, Belief: BandMedium, HasAmmo: true})
	if act.Name != "pursue" {
		t.Fatalf("got %q, want pursue", act.Name)
	}
	if act.State != StatePursuing {
		t.Fatalf("pursue drives %s", act.State)
	}
}

func TestPlanner_CautiousApproachAtLowBelief(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{Health: HealthHealthy, Belief: BandLow, HasAmmo: true})
	if act.Name != "approach_cautious" {
		t.Fatalf("got %q, want approach_cautious", act.Name)
	}
	if act.State != StateSearching {
		t.Fatalf("approach_cautious drives %s, want %s", act.State, StateSearching)
	}
}

func TestPlanner_SearchAtFaintBelief(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{Health: HealthHealthy, Belief: BandSearching, HasAmmo: true})
	if act.Name != "search" {
		t.Fatalf("got %q, want search", act.Name)
	}
}

func TestPlanner_HunkerWhileSuppressedInCover(t *testing.T) {
	p := NewPlanner()
	act := p.Select(WorldState{
		Health: HealthHealthy, Suppressed: true, UnderFire: true,
		InCover: true, Belief: BandMedium, HasAmmo: true,
	})
	if act.Name != "hunker" {
		t.Fatalf("got %q, want hunker", act.Name)
	}
	if act.State != StateSuppressed {
		t.Fatalf("hunker drives %s", act.State)
	}
}

func TestActionLibrary_CostsSortedByUrgency(t *testing.T) {
	lib := ActionLibrary()
	if len(lib) == 0 {
		t.Fatal("empty library")
	}
	last := lib[len(lib)-1]
	if last.Name != "patrol" {
		t.Fatalf("library must end in patrol fallback, ends in %q", last.Name)
	}
	if !last.When(WorldState{}) {
		t.Fatal("patrol precondition must hold for any fact table")
	}
	for _, act := range lib {
		if act.Cost <= 0 || act.Cost > 1 {
			t.Errorf("%s: cost %f outside (0,1]", act.Name, act.Cost)
		}
		if act.Cost > last.Cost {
			t.Errorf("%s: cost %f above the fallback's", act.Name, act.Cost)
		}
	}
}
