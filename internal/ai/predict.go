package ai

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// HypothesisKind names the model that produced a candidate position.
type HypothesisKind int

const (
	HypCover HypothesisKind = iota
	HypFlankLeft
	HypFlankRight
	HypShotDirection
	HypTimeExpansion
)

func (k HypothesisKind) String() string {
	switch k {
	case HypCover:
		return "cover"
	case HypFlankLeft:
		return "flank_left"
	case HypFlankRight:
		return "flank_right"
	case HypShotDirection:
		return "shot_direction"
	case HypTimeExpansion:
		return "time_expansion"
	default:
		return "unknown"
	}
}

// Hypothesis is a weighted candidate position for an unseen adversary.
// Generated fresh each cycle; never persisted.
type Hypothesis struct {
	Position    Vec2
	Kind        HypothesisKind
	Probability float64
}

// PredictionEngine turns a stale belief into a small set of weighted
// position hypotheses. Invoked only when a suspected position exists
// but direct sight does not.
type PredictionEngine struct {
	nav   NavQuerier
	cfg   *Tuning
	noise opensimplex.Noise
}

// NewPredictionEngine creates an engine. The seed fixes the style
// perturbation noise so identical runs produce identical hypotheses.
func NewPredictionEngine(nav NavQuerier, cfg *Tuning, seed int64) *PredictionEngine {
	return &PredictionEngine{
		nav:   nav,
		cfg:   cfg,
		noise: opensimplex.NewNormalized(seed),
	}
}

// baseWeights are the pre-perturbation hypothesis priors.
var baseWeights = map[HypothesisKind]float64{
	HypCover:         0.30,
	HypFlankLeft:     0.15,
	HypFlankRight:    0.15,
	HypShotDirection: 0.20,
	HypTimeExpansion: 0.20,
}

// styleBias multiplies a hypothesis weight according to the adversary's
// classified style. A hider retreats to cover; a pusher follows their
// own fire; a repositioner flanks.
func styleBias(style FightingStyle, kind HypothesisKind) float64 {
	switch style {
	case StyleCautious:
		if kind == HypCover {
			return 1.6
		}
		if kind == HypShotDirection {
			return 0.7
		}
	case StyleAggressive:
		if kind == HypShotDirection || kind == HypTimeExpansion {
			return 1.5
		}
		if kind == HypCover {
			return 0.6
		}
	case StyleCunning:
		if kind == HypFlankLeft || kind == HypFlankRight {
			return 1.7
		}
	}
	return 1.0
}

// Hypotheses generates the full candidate set for one agent.
func (pe *PredictionEngine) Hypotheses(agentPos Vec2, b *BeliefState, style FightingStyle, tick int) []Hypothesis {
	if !b.HasPosition {
		return nil
	}
	suspect := b.Position
	toAgent := agentPos.Sub(suspect).Norm()

	// Cover-seeking: project along the target's last movement direction,
	// falling back to directly away from the agent.
	coverDir := b.LastMoveDir
	if coverDir.IsZero() {
		coverDir = toAgent.Scale(-1)
	}
	coverPos := suspect.Add(coverDir.Scale(pe.cfg.FlankOffset * 0.8))

	// Flanks: fixed perpendicular offsets relative to the agent-target axis.
	perp := toAgent.Perp()
	leftPos := suspect.Add(perp.Scale(pe.cfg.FlankOffset))
	rightPos := suspect.Add(perp.Scale(-pe.cfg.FlankOffset))

	// Last shot direction: the target tends to keep moving the way it
	// was shooting from.
	shotDir := b.LastShotDir
	if shotDir.IsZero() {
		shotDir = coverDir
	}
	shotPos := suspect.Add(shotDir.Scale(pe.cfg.ShotDirProjection))

	// Time expansion: a ring of reachable space growing with time since
	// last sight. The sample point sits on the ring away from the agent.
	sinceSight := float64(b.TicksSinceSight(tick)) / TickRate
	if sinceSight > 30 {
		sinceSight = 30
	}
	radius := pe.cfg.TargetMaxSpeed * sinceSight
	expandPos := suspect.Add(toAgent.Scale(-radius))

	cands := []Hypothesis{
		{Position: coverPos, Kind: HypCover},
		{Position: leftPos, Kind: HypFlankLeft},
		{Position: rightPos, Kind: HypFlankRight},
		{Position: shotPos, Kind: HypShotDirection},
		{Position: expandPos, Kind: HypTimeExpansion},
	}

	total := 0.0
	for i := range cands {
		// Clip every candidate to navigable space before weighting.
		cands[i].Position = pe.nav.NearestNavigable(cands[i].Position)

		w := baseWeights[cands[i].Kind]
		w *= styleBias(style, cands[i].Kind)
		w *= pe.perturb(cands[i].Kind, tick)
		cands[i].Probability = w
		total += w
	}
	if total <= 0 {
		return nil
	}
	for i := range cands {
		cands[i].Probability /= total
	}
	return cands
}

// perturb returns a smooth deterministic jitter factor in
// [1-amp, 1+amp], keyed by hypothesis kind and tick so no two runs of
// the same seed diverge.
func (pe *PredictionEngine) perturb(kind HypothesisKind, tick int) float64 {
	n := pe.noise.Eval2(float64(tick)*0.013, float64(kind)*7.3) // 0..1
	return 1.0 + pe.cfg.StylePerturbAmp*(2*n-1)
}

// Intercept picks the hypothesis to move against: highest probability,
// ties broken by shortest navigable distance from the agent.
func (pe *PredictionEngine) Intercept(agentPos Vec2, hyps []Hypothesis) (Hypothesis, bool) {
	if len(hyps) == 0 {
		return Hypothesis{}, false
	}
	best := hyps[0]
	bestDist := pe.navDist(agentPos, best.Position)
	for _, h := range hyps[1:] {
		switch {
		case h.Probability > best.Probability:
			best = h
			bestDist = pe.navDist(agentPos, h.Position)
		case h.Probability == best.Probability:
			if d := pe.navDist(agentPos, h.Position); d < bestDist {
				best = h
				bestDist = d
			}
		}
	}
	return best, true
}

func (pe *PredictionEngine) navDist(a, b Vec2) float64 {
	if d, ok := pe.nav.PathLength(a, b); ok {
		return d
	}
	// Unreachable candidates sort last.
	return 1e18
}
