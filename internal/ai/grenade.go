package ai

// GrenadeTrigger identifies which condition justified a throw.
// Declaration order is priority order: when several triggers are
// satisfied in the same tick, the lowest-numbered one wins.
type GrenadeTrigger int

const (
	TriggerNone GrenadeTrigger = iota

	TriggerCriticalHealth    // own health critical with a known threat
	TriggerSuppressedHidden  // pinned in cover, target unseen for a while
	TriggerUnderFireApproach // taking fire while closing at speed
	TriggerAllyDeaths        // several allies lost in a short window
	TriggerVulnerabilitySound // reload/empty-click heard, no sight
	TriggerSustainedFire     // continuous incoming fire in this zone
	TriggerHiddenSuspicion   // medium+ belief, target hidden too long
	TriggerSightSafeBand     // specialist: visible target in throw band
	TriggerPassageAhead      // specialist: deny the corridor ahead
)

func (t GrenadeTrigger) String() string {
	switch t {
	case TriggerNone:
		return "none"
	case TriggerCriticalHealth:
		return "critical_health"
	case TriggerSuppressedHidden:
		return "suppressed_hidden"
	case TriggerUnderFireApproach:
		return "under_fire_approach"
	case TriggerAllyDeaths:
		return "ally_deaths"
	case TriggerVulnerabilitySound:
		return "vulnerability_sound"
	case TriggerSustainedFire:
		return "sustained_fire"
	case TriggerHiddenSuspicion:
		return "hidden_suspicion"
	case TriggerSightSafeBand:
		return "sight_safe_band"
	case TriggerPassageAhead:
		return "passage_ahead"
	default:
		return "unknown"
	}
}

// GrenadeComponent evaluates throw triggers and enforces the safety
// constraints every throw must clear. Trigger state lives on the agent;
// the component itself is stateless and shared.
type GrenadeComponent struct {
	cfg *Tuning
}

// NewGrenadeComponent creates the shared evaluator.
func NewGrenadeComponent(cfg *Tuning) *GrenadeComponent {
	return &GrenadeComponent{cfg: cfg}
}

// Ready returns the highest-priority satisfied trigger, or TriggerNone.
// A trigger can only fire with grenades in inventory and the throw
// cooldown expired.
func (g *GrenadeComponent) Ready(a *Agent, ws WorldState, tick int) GrenadeTrigger {
	if a.Grenades <= 0 || tick < a.grenadeCooldownUntil {
		return TriggerNone
	}
	cfg := g.cfg

	knownThreat := ws.Belief >= BandLow || ws.TargetVisible

	if ws.Health == HealthCritical && knownThreat {
		return TriggerCriticalHealth
	}

	if a.Suppressed && !ws.TargetVisible && a.suppressedHiddenSince >= 0 &&
		tick-a.suppressedHiddenSince >= SecondsToTicks(cfg.SuppressedHiddenSeconds) {
		return TriggerSuppressedHidden
	}

	if a.UnderFire && a.lastSpeed >= cfg.ApproachSpeedFrac*a.loadout.MaxSpeed && a.closingOnTarget {
		return TriggerUnderFireApproach
	}

	if g.allyDeathsInWindow(a, tick) >= cfg.AllyDeathCount {
		return TriggerAllyDeaths
	}

	if !ws.TargetVisible && a.lastVulnSoundTick >= 0 &&
		tick-a.lastVulnSoundTick <= SecondsToTicks(2.0) {
		return TriggerVulnerabilitySound
	}

	if a.underFireSince >= 0 && tick-a.underFireSince >= SecondsToTicks(cfg.SustainedFireSeconds) {
		return TriggerSustainedFire
	}

	if ws.Belief >= BandMedium && !ws.TargetVisible && a.targetHiddenSince >= 0 &&
		tick-a.targetHiddenSince >= SecondsToTicks(cfg.HiddenSuspicionSeconds) {
		return TriggerHiddenSuspicion
	}

	if a.loadout.GrenadeSpecialist && ws.TargetVisible && a.Belief.HasPosition {
		dist := a.Pos.Dist(a.Belief.Position)
		if dist >= cfg.SafeThrowBandMin && dist <= cfg.SafeThrowBandMax {
			return TriggerSightSafeBand
		}
	}

	if a.loadout.GrenadeSpecialist && a.State == StatePursuing && a.passageAhead {
		return TriggerPassageAhead
	}

	return TriggerNone
}

// Target resolves the throw point for a trigger and applies the safety
// check: the target must sit at least blast radius + safety margin from
// the thrower. Passage-clearing throws aim a fixed point ahead of the
// agent — never at the adversary — which keeps them outside the unsafe
// band by construction.
func (g *GrenadeComponent) Target(a *Agent, trigger GrenadeTrigger) (Vec2, bool) {
	cfg := g.cfg
	minDist := cfg.BlastRadius + cfg.SafetyMargin

	if trigger == TriggerPassageAhead {
		dir := a.Facing
		if dir.IsZero() {
			dir = Vec2{1, 0}
		}
		return a.Pos.Add(dir.Norm().Scale(cfg.PassageThrowDist)), true
	}

	if !a.Belief.HasPosition {
		return Vec2{}, false
	}
	target := a.Belief.Position
	if a.Pos.Dist(target) < minDist {
		// Too close: rejected outright this tick. The trigger is
		// re-evaluated next tick if still satisfied.
		return Vec2{}, false
	}
	return target, true
}

// CommitThrow consumes a grenade and starts the cooldown. Passage
// throws recycle faster than reactive combat throws.
func (g *GrenadeComponent) CommitThrow(a *Agent, trigger GrenadeTrigger, tick int) {
	a.Grenades--
	cd := g.cfg.GrenadeCooldownSeconds
	if trigger == TriggerPassageAhead {
		cd = g.cfg.PassageCooldownSeconds
	}
	a.grenadeCooldownUntil = tick + SecondsToTicks(cd)
}

func (g *GrenadeComponent) allyDeathsInWindow(a *Agent, tick int) int {
	window := SecondsToTicks(g.cfg.AllyDeathWindowSeconds)
	n := 0
	for _, dt := range a.allyDeathTicks {
		if tick-dt <= window {
			n++
		}
	}
	return n
}
