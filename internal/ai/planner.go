package ai

// Action is one entry in the fixed planning library: a name, the
// tactical state it drives, a precondition over the fact table, and a
// cost. Lower cost means more urgent. The library is static — actions
// are never mutated or added at runtime.
type Action struct {
	Name  string
	State TacticalState
	Cost  float64
	When  func(WorldState) bool
}

// Planner is single-step, reactive GOAP: every tick it filters the
// library by precondition and returns the cheapest applicable action.
// No plan queue is kept — re-planning each tick bounds per-tick cost
// and can never execute a stale plan.
type Planner struct {
	actions []Action
}

// NewPlanner builds a planner over the standard action library.
func NewPlanner() *Planner {
	return &Planner{actions: ActionLibrary()}
}

// Select returns the minimum-cost applicable action. Ties break by
// declaration order in the library, which keeps planning deterministic.
// The Patrol fallback is always applicable, so Select always returns
// an action; returning none would be a library bug, not a runtime
// condition.
func (p *Planner) Select(ws WorldState) Action {
	best := -1
	for i, act := range p.actions {
		if !act.When(ws) {
			continue
		}
		if best < 0 || act.Cost < p.actions[best].Cost {
			best = i
		}
	}
	if best < 0 {
		// Unreachable while Patrol stays in the library. Kept as a
		// hard fallback rather than a panic so a broken library still
		// degrades to passive behaviour.
		return p.actions[len(p.actions)-1]
	}
	return p.actions[best]
}

// Actions exposes the library for tests and tooling.
func (p *Planner) Actions() []Action {
	return p.actions
}

func proactiveTrigger(t GrenadeTrigger) bool {
	switch t {
	case TriggerSightSafeBand, TriggerPassageAhead, TriggerHiddenSuspicion, TriggerVulnerabilitySound:
		return true
	}
	return false
}

func reactiveTrigger(t GrenadeTrigger) bool {
	switch t {
	case TriggerSuppressedHidden, TriggerUnderFireApproach, TriggerAllyDeaths, TriggerSustainedFire:
		return true
	}
	return false
}

// ActionLibrary returns the full static library. Order matters: it is
// the deterministic tie-break for equal costs, and tests pin it.
func ActionLibrary() []Action {
	return []Action{
		{
			Name:  "grenade_last_stand",
			State: StateThrowingGrenade,
			Cost:  0.20,
			When: func(ws WorldState) bool {
				return ws.GrenadeTrigger == TriggerCriticalHealth
			},
		},
		{
			Name:  "retreat_critical",
			State: StateRetreating,
			Cost:  0.25,
			When: func(ws WorldState) bool {
				return ws.Health == HealthCritical && (ws.TargetVisible || ws.Belief >= BandLow)
			},
		},
		{
			Name:  "grenade_proactive",
			State: StateThrowingGrenade,
			Cost:  0.32,
			When: func(ws WorldState) bool {
				return proactiveTrigger(ws.GrenadeTrigger)
			},
		},
		{
			Name:  "grenade_reactive",
			State: StateThrowingGrenade,
			Cost:  0.38,
			When: func(ws WorldState) bool {
				return reactiveTrigger(ws.GrenadeTrigger)
			},
		},
		{
			Name:  "melee_charge",
			State: StateAssault,
			Cost:  0.42,
			When: func(ws WorldState) bool {
				return ws.MeleeCapable && ws.TargetVisible && ws.TargetRange == RangeMelee
			},
		},
		{
			Name:  "seek_cover",
			State: StateSeekingCover,
			Cost:  0.45,
			When: func(ws WorldState) bool {
				return ws.UnderFire && !ws.InCover
			},
		},
		{
			Name:  "hunker",
			State: StateSuppressed,
			Cost:  0.48,
			When: func(ws WorldState) bool {
				return ws.Suppressed && ws.InCover
			},
		},
		{
			Name:  "assault",
			State: StateAssault,
			Cost:  0.50,
			When: func(ws WorldState) bool {
				return ws.TargetVisible && ws.Health == HealthHealthy &&
					(ws.TargetRange == RangeShort || ws.TargetRange == RangeMelee)
			},
		},
		{
			Name:  "engage",
			State: StateCombat,
			Cost:  0.55,
			When: func(ws WorldState) bool {
				return ws.TargetVisible && ws.HasAmmo
			},
		},
		{
			Name:  "pursue",
			State: StatePursuing,
			Cost:  0.60,
			When: func(ws WorldState) bool {
				return !ws.TargetVisible && ws.Belief >= BandMedium && !ws.Stuck
			},
		},
		{
			Name:  "flank",
			State: StateFlanking,
			Cost:  0.62,
			When: func(ws WorldState) bool {
				return !ws.TargetVisible && ws.Belief >= BandMedium &&
					ws.Style == StyleCautious && ws.InCover
			},
		},
		{
			Name:  "approach_cautious",
			State: StateSearching,
			Cost:  0.65,
			When: func(ws WorldState) bool {
				return !ws.TargetVisible && ws.Belief == BandLow
			},
		},
		{
			Name:  "fall_back",
			State: StateRetreating,
			Cost:  0.70,
			When: func(ws WorldState) bool {
				return ws.Health == HealthWounded && ws.UnderFire && !ws.TargetVisible
			},
		},
		{
			Name:  "move_to_squad_contact",
			State: StatePursuing,
			Cost:  0.75,
			When: func(ws WorldState) bool {
				return ws.SquadContact && ws.Belief <= BandSearching && !ws.Stuck
			},
		},
		{
			Name:  "search",
			State: StateSearching,
			Cost:  0.80,
			When: func(ws WorldState) bool {
				// Stuck pursuit degrades into a search of the same
				// area rather than ramming an unreachable point.
				return ws.Belief == BandSearching || (ws.Stuck && ws.Belief >= BandLow)
			},
		},
		{
			Name:  "patrol",
			State: StateIdle,
			Cost:  0.95,
			When:  func(WorldState) bool { return true },
		},
	}
}
