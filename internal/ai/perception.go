package ai

// ObservationKind classifies a single perception event.
type ObservationKind int

const (
	ObsSight ObservationKind = iota
	ObsGunshot
	ObsReload
	ObsEmptyClick
	ObsMuzzleFlash
	ObsLightBeam
	ObsFootstep
	ObsSquadIntel
)

func (k ObservationKind) String() string {
	switch k {
	case ObsSight:
		return "sight"
	case ObsGunshot:
		return "gunshot"
	case ObsReload:
		return "reload"
	case ObsEmptyClick:
		return "empty_click"
	case ObsMuzzleFlash:
		return "muzzle_flash"
	case ObsLightBeam:
		return "light_beam"
	case ObsFootstep:
		return "footstep"
	case ObsSquadIntel:
		return "squad_intel"
	default:
		return "unknown"
	}
}

// Observation is one normalized perception event. Observations are
// transient: consumed by the belief update the same tick, never stored.
type Observation struct {
	Kind      ObservationKind
	Origin    Vec2
	Direction Vec2    // travel direction for shots/beams; zero when unknown
	Strength  float64 // 0..1 after attenuation
	Tick      int
}

// TargetSnapshot is the adversary status the perception layer works
// from this tick. Velocity feeds the cover-seeking hypothesis.
type TargetSnapshot struct {
	Pos      Vec2
	Velocity Vec2
	Alive    bool
}

// PerceptionGateway normalizes raw world events and line-of-sight
// results into Observations. The surrounding game posts sound/visual
// events asynchronously; the gateway drains them once per tick.
type PerceptionGateway struct {
	rc      Raycaster
	cfg     *Tuning
	pending []Observation
}

// NewPerceptionGateway creates a gateway over the given raycaster.
func NewPerceptionGateway(rc Raycaster, cfg *Tuning) *PerceptionGateway {
	return &PerceptionGateway{rc: rc, cfg: cfg}
}

// Post queues a raw event for the next collection pass. Strength is
// the emitter-side intensity before distance attenuation.
func (pg *PerceptionGateway) Post(kind ObservationKind, origin, dir Vec2, strength float64, tick int) {
	pg.pending = append(pg.pending, Observation{
		Kind:      kind,
		Origin:    origin,
		Direction: dir.Norm(),
		Strength:  clamp01(strength),
		Tick:      tick,
	})
}

// Collect returns this tick's observations for one agent: a sight
// observation when line of sight to the target holds, plus every
// pending sound/visual event still audible at the agent's position.
// Pending events are shared across agents; EndTick clears them.
func (pg *PerceptionGateway) Collect(pos Vec2, target TargetSnapshot, tick int) []Observation {
	var out []Observation

	if target.Alive && pg.rc.LineOfSight(pos, target.Pos) {
		dist := pos.Dist(target.Pos)
		strength := 1.0 - dist/pg.cfg.SightStrengthRange
		if strength > 0 {
			out = append(out, Observation{
				Kind:     ObsSight,
				Origin:   target.Pos,
				Strength: clamp01(strength),
				Tick:     tick,
			})
		}
	}

	for _, ev := range pg.pending {
		heard, ok := pg.attenuate(pos, ev)
		if ok {
			out = append(out, heard)
		}
	}
	return out
}

// attenuate applies the hearing model: linear falloff to HearingMaxRange,
// a muffling multiplier when geometry occludes the source, and a floor
// below which the signal is discarded.
func (pg *PerceptionGateway) attenuate(pos Vec2, ev Observation) (Observation, bool) {
	dist := pos.Dist(ev.Origin)
	if dist > pg.cfg.HearingMaxRange {
		return Observation{}, false
	}
	strength := ev.Strength * (1.0 - dist/pg.cfg.HearingMaxRange)
	if !pg.rc.LineOfSight(pos, ev.Origin) {
		strength *= pg.cfg.OccludedSoundMul
	}
	if strength < pg.cfg.MinHeardStrength {
		return Observation{}, false
	}
	ev.Strength = strength
	return ev, true
}

// EndTick discards consumed events. Call once after all agents have
// collected.
func (pg *PerceptionGateway) EndTick() {
	pg.pending = pg.pending[:0]
}
