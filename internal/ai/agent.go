package ai

import "fmt"

// AgentClass tags the combat archetype. All classes share the one
// Agent type; class differences live entirely in the Loadout record
// and a handful of capability-gated behaviours, not in subtypes.
type AgentClass int

const (
	ClassRifle AgentClass = iota
	ClassShotgun
	ClassSniper
	ClassGrenadier
	ClassMelee
)

func (c AgentClass) String() string {
	switch c {
	case ClassRifle:
		return "rifle"
	case ClassShotgun:
		return "shotgun"
	case ClassSniper:
		return "sniper"
	case ClassGrenadier:
		return "grenadier"
	case ClassMelee:
		return "melee"
	default:
		return "unknown"
	}
}

// Loadout is the capability/config record that parameterizes an agent.
// Applied at spawn and re-appliable later: difficulty selection happens
// after agents already exist, so configuration must be late-binding and
// idempotent.
type Loadout struct {
	Class             AgentClass
	MaxHealth         float64
	MaxSpeed          float64 // px/s
	EngagementRange   float64 // preferred firing distance
	Ammo              int
	Grenades          int
	GrenadeSpecialist bool // unlocks sight-band and passage throws
	MeleeCapable      bool // unlocks melee attacks and Dodging
}

// DefaultLoadout returns the stock loadout for a class.
func DefaultLoadout(class AgentClass) Loadout {
	lo := Loadout{
		Class:           class,
		MaxHealth:       100,
		MaxSpeed:        120,
		EngagementRange: 400,
		Ammo:            90,
		Grenades:        1,
	}
	switch class {
	case ClassShotgun:
		lo.EngagementRange = 160
		lo.MaxSpeed = 135
	case ClassSniper:
		lo.EngagementRange = 800
		lo.MaxSpeed = 100
		lo.Grenades = 0
	case ClassGrenadier:
		lo.Grenades = 4
		lo.GrenadeSpecialist = true
	case ClassMelee:
		lo.MeleeCapable = true
		lo.MaxSpeed = 150
		lo.EngagementRange = 40
		lo.Ammo = 0
		lo.Grenades = 0
	}
	return lo
}

// Agent is one non-player combatant's decision record: position and
// status snapshot, belief, timers, and the active tactical state. It
// is a flat record owned by the tick loop — cross-agent reads go
// through the squad coordinator's published snapshots, never through
// direct pointers between agents.
type Agent struct {
	ID    int
	Label string

	Pos       Vec2
	Facing    Vec2
	Health    float64
	MaxHealth float64
	Ammo      int
	Grenades  int

	State  TacticalState
	Belief BeliefState
	Style  StyleClassifier

	cfg     *Tuning
	loadout Loadout

	// Per-tick situation flags, refreshed by the engine before planning.
	TargetVisible       bool
	UnderFire           bool
	Suppressed          bool
	SquadContact        bool
	GrenadeThreatActive bool

	// Trigger bookkeeping (tick stamps; -1 = not running).
	suppressedHiddenSince int
	underFireSince        int
	targetHiddenSince     int
	lastVulnSoundTick     int
	allyDeathTicks        []int
	grenadeCooldownUntil  int

	grenadeThreatPos Vec2

	// Executor working state.
	action           Action
	stateEnteredTick int
	evadeUntil       int
	evadeTo          Vec2
	dodgeReadyTick   int
	pendingThrow     GrenadeTrigger
	assignedCoverID  int
	coverPos         Vec2
	hasCover         bool
	interceptPos     Vec2
	hasIntercept     bool
	repositionDir    float64 // lateral sign used to clear a blocked muzzle
	passageAhead     bool
	closingOnTarget  bool
	lastSpeed        float64

	// Stuck detection.
	progressAnchor Vec2
	progressTick   int
	stuckDetected  bool

	motor MotorCommand
}

// NewAgent creates an agent at pos with the given loadout applied.
// Posture starts at Idle with an empty belief.
func NewAgent(id int, pos Vec2, lo Loadout, cfg *Tuning) *Agent {
	a := &Agent{
		ID:                    id,
		Label:                 fmt.Sprintf("A%d", id),
		Pos:                   pos,
		Facing:                Vec2{1, 0},
		State:                 StateIdle,
		Belief:                NewBeliefState(),
		Style:                 NewStyleClassifier(cfg),
		cfg:                   cfg,
		suppressedHiddenSince: -1,
		underFireSince:        -1,
		targetHiddenSince:     -1,
		lastVulnSoundTick:     -1,
		assignedCoverID:       -1,
		progressAnchor:        pos,
	}
	a.Configure(lo)
	return a
}

// Configure applies a loadout. Safe to call at any time after creation
// — per-difficulty loadouts arrive after spawn — and idempotent: the
// same loadout applied twice leaves the agent exactly as applying it
// once would.
func (a *Agent) Configure(lo Loadout) {
	if a.loadout == lo && a.MaxHealth == lo.MaxHealth {
		return
	}
	a.loadout = lo
	a.MaxHealth = lo.MaxHealth
	if a.Health <= 0 || a.Health > lo.MaxHealth {
		a.Health = lo.MaxHealth
	}
	a.Ammo = lo.Ammo
	a.Grenades = lo.Grenades
}

// Loadout returns the active capability record.
func (a *Agent) Loadout() Loadout {
	return a.loadout
}

// BeliefBand returns the current confidence band under the agent's
// tuning.
func (a *Agent) BeliefBand() ConfidenceBand {
	return a.Belief.Band(a.cfg)
}

// Alive reports whether the agent should still be ticked.
func (a *Agent) Alive() bool {
	return a.Health > 0
}

// Motor returns the command produced by the last tick.
func (a *Agent) Motor() MotorCommand {
	return a.motor
}

// SetGrenadeThreat flags a live grenade near the agent. The executor
// treats an active threat as an unconditional interrupt.
func (a *Agent) SetGrenadeThreat(pos Vec2, active bool) {
	a.GrenadeThreatActive = active
	if active {
		a.grenadeThreatPos = pos
	}
}

// NoteAllyDeath records a witnessed ally death for the grenade
// ally-deaths trigger window.
func (a *Agent) NoteAllyDeath(tick int) {
	window := SecondsToTicks(a.cfg.AllyDeathWindowSeconds)
	kept := a.allyDeathTicks[:0]
	for _, t := range a.allyDeathTicks {
		if tick-t <= window {
			kept = append(kept, t)
		}
	}
	a.allyDeathTicks = append(kept, tick)
}

// refreshTimers advances the tick-stamped trigger state from the
// current situation flags. Called once per tick before planning.
func (a *Agent) refreshTimers(tick int) {
	if a.UnderFire {
		if a.underFireSince < 0 {
			a.underFireSince = tick
		}
	} else {
		a.underFireSince = -1
	}

	if a.Suppressed && !a.TargetVisible {
		if a.suppressedHiddenSince < 0 {
			a.suppressedHiddenSince = tick
		}
	} else {
		a.suppressedHiddenSince = -1
	}

	if a.Belief.HasPosition && !a.TargetVisible {
		if a.targetHiddenSince < 0 {
			a.targetHiddenSince = tick
		}
	} else {
		a.targetHiddenSince = -1
	}
}
