package ai

// HealthBand buckets agent health for planning.
type HealthBand int

const (
	HealthCritical HealthBand = iota
	HealthWounded
	HealthHealthy
)

func (hb HealthBand) String() string {
	switch hb {
	case HealthCritical:
		return "critical"
	case HealthWounded:
		return "wounded"
	case HealthHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}

// RangeBand buckets the distance to the suspected/visible target.
type RangeBand int

const (
	RangeUnknown RangeBand = iota
	RangeMelee
	RangeShort
	RangeEffective
	RangeFar
)

func (rb RangeBand) String() string {
	switch rb {
	case RangeUnknown:
		return "unknown"
	case RangeMelee:
		return "melee"
	case RangeShort:
		return "short"
	case RangeEffective:
		return "effective"
	case RangeFar:
		return "far"
	default:
		return "invalid"
	}
}

// WorldState is the statically-typed fact table the planner reads.
// Every field is a named, typed fact; precondition checks compile
// against it instead of probing a string-keyed map. Rebuilt from
// scratch every tick and never mutated afterwards.
type WorldState struct {
	Health   HealthBand
	HasAmmo  bool
	Grenades int

	Belief        ConfidenceBand
	TargetVisible bool
	TargetRange   RangeBand

	UnderFire     bool
	Suppressed    bool
	InCover       bool
	SquadContact  bool
	GrenadeThreat bool
	Stuck         bool

	Style FightingStyle

	// Capability facts from the loadout.
	MeleeCapable      bool
	GrenadeSpecialist bool

	// GrenadeTrigger is the highest-priority satisfied grenade trigger
	// this tick, or TriggerNone. The planner keys grenade actions off
	// it rather than re-deriving trigger logic.
	GrenadeTrigger GrenadeTrigger
}

// BuildWorldState flattens one agent's belief, status, and squad intel
// into the fact table. grenades is consulted for trigger evaluation;
// pass nil to leave grenade facts unset (used by a few focused tests).
func BuildWorldState(a *Agent, grenades *GrenadeComponent, tick int) WorldState {
	cfg := a.cfg

	ws := WorldState{
		HasAmmo:           a.Ammo > 0,
		Grenades:          a.Grenades,
		Belief:            a.Belief.Band(cfg),
		TargetVisible:     a.TargetVisible,
		UnderFire:         a.UnderFire,
		Suppressed:        a.Suppressed,
		InCover:           a.State == StateInCover || a.State == StateSuppressed,
		SquadContact:      a.SquadContact,
		GrenadeThreat:     a.GrenadeThreatActive,
		Stuck:             a.stuckDetected,
		Style:             a.Style.Style(tick),
		MeleeCapable:      a.loadout.MeleeCapable,
		GrenadeSpecialist: a.loadout.GrenadeSpecialist,
		GrenadeTrigger:    TriggerNone,
	}

	frac := 1.0
	if a.MaxHealth > 0 {
		frac = a.Health / a.MaxHealth
	}
	switch {
	case frac <= cfg.HealthCriticalFrac:
		ws.Health = HealthCritical
	case frac <= cfg.HealthWoundedFrac:
		ws.Health = HealthWounded
	default:
		ws.Health = HealthHealthy
	}

	if a.Belief.HasPosition {
		dist := a.Pos.Dist(a.Belief.Position)
		switch {
		case dist <= cfg.MeleeRange:
			ws.TargetRange = RangeMelee
		case dist <= cfg.ShortRange:
			ws.TargetRange = RangeShort
		case dist <= cfg.FarRange:
			ws.TargetRange = RangeEffective
		default:
			ws.TargetRange = RangeFar
		}
	}

	if grenades != nil {
		ws.GrenadeTrigger = grenades.Ready(a, ws, tick)
	}
	return ws
}
