package ai

// ConfidenceBand buckets a belief's certainty for planning. The bands
// deliberately overlap nothing: a confidence maps to exactly one band.
type ConfidenceBand int

const (
	BandLost      ConfidenceBand = iota // no idea where the target is
	BandSearching                       // faint suspicion, worth a look
	BandLow                             // suspected area
	BandMedium                          // probable position
	BandHigh                            // near-certain position
)

func (b ConfidenceBand) String() string {
	switch b {
	case BandLost:
		return "lost"
	case BandSearching:
		return "searching"
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	default:
		return "unknown"
	}
}

// BeliefState is one agent's decaying estimate of the adversary's
// position. Confidence only moves down between observations; an
// observation overwrites it only when the freshly derived value beats
// the already-decayed one, so a stale HIGH can never smother a newer,
// weaker but live signal.
type BeliefState struct {
	Position    Vec2
	HasPosition bool
	Confidence  float64

	LastUpdateTick int
	LastSeenTick   int // last direct-sight tick, -1 before first sight

	// Context captured for the prediction engine.
	LastMoveDir Vec2 // target's movement direction at last sight
	LastShotDir Vec2 // bearing of the last heard/seen shot

	// wasLost latches once confidence falls under the Lost line;
	// clearing it needs BandLostRecover, not merely BandLost. The gap
	// stops band flapping right at the threshold.
	wasLost bool
}

// NewBeliefState returns an empty belief (nothing known).
func NewBeliefState() BeliefState {
	return BeliefState{LastSeenTick: -1, wasLost: true}
}

// baseConfidence maps an observation kind to its trust ceiling.
func baseConfidence(kind ObservationKind, cfg *Tuning) float64 {
	switch kind {
	case ObsSight, ObsMuzzleFlash:
		return cfg.ConfidenceSight
	case ObsGunshot:
		return cfg.ConfidenceGunshot
	case ObsReload, ObsEmptyClick:
		return cfg.ConfidenceReload
	case ObsLightBeam:
		return cfg.ConfidenceLightBeam
	case ObsFootstep:
		return cfg.ConfidenceFootstep
	default:
		return 0
	}
}

// DerivedConfidence computes the confidence an observation would carry:
// the kind's base scaled by attenuated strength. Exposed for tests and
// the squad coordinator's merge rule.
func DerivedConfidence(obs Observation, cfg *Tuning) float64 {
	if obs.Kind == ObsSquadIntel {
		// Squad intel arrives pre-attenuated: reporter confidence times
		// the per-hop factor, already folded into Strength.
		return clamp01(obs.Strength)
	}
	return clamp01(baseConfidence(obs.Kind, cfg) * obs.Strength)
}

// Update applies one observation. Returns true when the belief was
// overwritten, false when the decayed current value still wins.
func (b *BeliefState) Update(obs Observation, cfg *Tuning) bool {
	derived := DerivedConfidence(obs, cfg)
	if derived <= b.Confidence {
		return false
	}

	b.Position = obs.Origin
	b.HasPosition = true
	b.Confidence = derived
	b.LastUpdateTick = obs.Tick

	switch obs.Kind {
	case ObsSight:
		b.LastSeenTick = obs.Tick
	case ObsGunshot, ObsMuzzleFlash:
		if !obs.Direction.IsZero() {
			b.LastShotDir = obs.Direction
		}
	}

	if b.Confidence >= cfg.BandLostRecover {
		b.wasLost = false
	}
	return true
}

// NoteTargetMotion records the target's movement direction while it is
// directly visible; the prediction engine biases its cover hypothesis
// with it once sight is lost.
func (b *BeliefState) NoteTargetMotion(vel Vec2) {
	if !vel.IsZero() {
		b.LastMoveDir = vel.Norm()
	}
}

// Decay lowers confidence by the configured linear rate for dt seconds.
// Below the Lost line the suspected position clears entirely.
func (b *BeliefState) Decay(dt float64, cfg *Tuning) {
	if b.Confidence <= 0 {
		return
	}
	b.Confidence -= cfg.BeliefDecayPerSecond * dt
	if b.Confidence < 0 {
		b.Confidence = 0
	}
	if b.Confidence < cfg.BandLost {
		b.HasPosition = false
		b.wasLost = true
	}
}

// Band returns the belief's confidence band with low-end hysteresis:
// once Lost, the belief stays Lost until confidence climbs back past
// BandLostRecover.
func (b *BeliefState) Band(cfg *Tuning) ConfidenceBand {
	if b.wasLost && b.Confidence < cfg.BandLostRecover {
		return BandLost
	}
	switch {
	case b.Confidence >= cfg.BandHigh:
		return BandHigh
	case b.Confidence >= cfg.BandMedium:
		return BandMedium
	case b.Confidence >= cfg.BandLow:
		return BandLow
	case b.Confidence >= cfg.BandLost:
		return BandSearching
	default:
		return BandLost
	}
}

// TicksSinceSight returns ticks since the last direct sight, or a very
// large value when the target has never been seen.
func (b *BeliefState) TicksSinceSight(tick int) int {
	if b.LastSeenTick < 0 {
		return 1 << 30
	}
	return tick - b.LastSeenTick
}
