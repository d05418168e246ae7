package ai

// FightingStyle is the rolling classification of how the adversary has
// been fighting lately. It biases which position hypotheses the
// prediction engine trusts.
type FightingStyle int

const (
	StyleCautious   FightingStyle = iota // hides, trades space for safety
	StyleAggressive                      // pushes, shoots often
	StyleCunning                         // repositions laterally, ambushes
)

func (fs FightingStyle) String() string {
	switch fs {
	case StyleCautious:
		return "cautious"
	case StyleAggressive:
		return "aggressive"
	case StyleCunning:
		return "cunning"
	default:
		return "unknown"
	}
}

// styleEvent is one time-stamped piece of classifier evidence.
type styleEvent struct {
	tick int
	kind styleEvidence
}

type styleEvidence int

const (
	evidenceShot styleEvidence = iota
	evidenceHidden
	evidenceLateral
)

// StyleClassifier keeps a rolling window of adversary behaviour and
// votes a style from it. Evidence is cheap: shots heard, ticks spent
// hidden while suspected nearby, and sideways displacement between
// sightings.
type StyleClassifier struct {
	cfg    *Tuning
	events []styleEvent

	lastSightPos  Vec2
	hasLastSight  bool
	lastSightTick int
}

// NewStyleClassifier creates an empty classifier.
func NewStyleClassifier(cfg *Tuning) StyleClassifier {
	return StyleClassifier{cfg: cfg}
}

// Observe feeds one observation into the evidence window.
func (sc *StyleClassifier) Observe(obs Observation) {
	switch obs.Kind {
	case ObsGunshot, ObsMuzzleFlash:
		sc.push(obs.Tick, evidenceShot)
	case ObsSight:
		if sc.hasLastSight {
			moved := obs.Origin.Sub(sc.lastSightPos)
			// A sighting well displaced sideways from the previous one,
			// without shots in between, reads as repositioning.
			if moved.Len() > 60 && obs.Tick-sc.lastSightTick < SecondsToTicks(6) {
				sc.push(obs.Tick, evidenceLateral)
			}
		}
		sc.lastSightPos = obs.Origin
		sc.hasLastSight = true
		sc.lastSightTick = obs.Tick
	}
}

// NoteHidden marks one tick in which the target is suspected but not
// visible. Sustained hiding is the cautious tell.
func (sc *StyleClassifier) NoteHidden(tick int) {
	// Sampled, not per-tick: one evidence entry per half second keeps
	// the window small without changing the vote.
	if tick%(TickRate/2) == 0 {
		sc.push(tick, evidenceHidden)
	}
}

func (sc *StyleClassifier) push(tick int, kind styleEvidence) {
	sc.events = append(sc.events, styleEvent{tick: tick, kind: kind})
}

// Style prunes expired evidence and returns the current vote.
func (sc *StyleClassifier) Style(tick int) FightingStyle {
	window := SecondsToTicks(sc.cfg.StyleWindowSeconds)
	kept := sc.events[:0]
	var shots, hidden, lateral int
	for _, e := range sc.events {
		if tick-e.tick > window {
			continue
		}
		kept = append(kept, e)
		switch e.kind {
		case evidenceShot:
			shots++
		case evidenceHidden:
			hidden++
		case evidenceLateral:
			lateral++
		}
	}
	sc.events = kept

	switch {
	case lateral >= 2 && lateral*2 >= shots:
		return StyleCunning
	case shots > hidden:
		return StyleAggressive
	default:
		return StyleCautious
	}
}
