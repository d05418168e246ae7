package ai

import "math"

// CoverPoint is one navigable candidate position offering partial
// occlusion from a threat direction. The level layer discovers these;
// ID is the discovery index and doubles as the deterministic tie-break.
type CoverPoint struct {
	ID  int
	Pos Vec2
}

// CoverEvaluator scores candidate cover points against the current
// threat estimate. The score is a weighted sum of protection quality,
// a distance term, and an anti-clustering penalty; highest wins.
type CoverEvaluator struct {
	rc  Raycaster
	cfg *Tuning
}

// NewCoverEvaluator creates an evaluator over the given raycaster.
func NewCoverEvaluator(rc Raycaster, cfg *Tuning) *CoverEvaluator {
	return &CoverEvaluator{rc: rc, cfg: cfg}
}

// Score rates one candidate for an agent whose threat is at threat.
// claimedNearby is how many other agents already hold, or have claimed,
// positions within the clustering radius of the candidate.
func (ce *CoverEvaluator) Score(c CoverPoint, agentPos, threat Vec2, engagementRange float64, claimedNearby int) float64 {
	cfg := ce.cfg

	protection := ce.protection(c.Pos, threat)

	// Distance term: closer to the agent is better, but standing inside
	// the adversary's effective engagement envelope is penalized.
	distToAgent := c.Pos.Dist(agentPos)
	distCost := distToAgent / cfg.CoverMaxDist
	if c.Pos.Dist(threat) < engagementRange {
		distCost += 0.5
	}

	cluster := float64(claimedNearby) * cfg.CoverClusterWeight

	return cfg.CoverProtectionWeight*protection - cfg.CoverDistanceWeight*distCost - cluster
}

// protection returns the fraction of the danger arc occluded: short
// rays are cast from points fanned across the arc around the threat
// back toward the candidate, and blocked rays count as protected.
func (ce *CoverEvaluator) protection(pos, threat Vec2) float64 {
	cfg := ce.cfg
	rays := cfg.CoverArcRays
	if rays < 1 {
		rays = 1
	}

	center := HeadingTo(pos, threat)
	half := cfg.CoverArcWidth / 2
	threatDist := pos.Dist(threat)

	blocked := 0
	for i := 0; i < rays; i++ {
		frac := 0.5
		if rays > 1 {
			frac = float64(i) / float64(rays-1)
		}
		angle := center - half + cfg.CoverArcWidth*frac
		from := pos.Add(FromHeading(angle).Scale(threatDist))
		if !ce.rc.LineOfSight(from, pos) {
			blocked++
		}
	}
	return float64(blocked) / float64(rays)
}

// Best returns the highest-scoring candidate within range. Ties break
// by discovery order (lower ID wins). claimed reports how many agents
// crowd a given position; pass nil when clustering is irrelevant.
func (ce *CoverEvaluator) Best(cands []CoverPoint, agentPos, threat Vec2, engagementRange float64, claimed func(Vec2) int) (CoverPoint, bool) {
	best := CoverPoint{ID: -1}
	bestScore := -math.MaxFloat64
	for _, c := range cands {
		if c.Pos.Dist(agentPos) > ce.cfg.CoverMaxDist {
			continue
		}
		n := 0
		if claimed != nil {
			n = claimed(c.Pos)
		}
		score := ce.Score(c, agentPos, threat, engagementRange, n)
		if score > bestScore || (score == bestScore && best.ID >= 0 && c.ID < best.ID) {
			bestScore = score
			best = c
		}
	}
	return best, best.ID >= 0
}

// Ranked returns all in-range candidates ordered best-first, used when
// a claim collision forces an agent onto its next-best choice.
func (ce *CoverEvaluator) Ranked(cands []CoverPoint, agentPos, threat Vec2, engagementRange float64, claimed func(Vec2) int) []CoverPoint {
	type scored struct {
		c CoverPoint
		s float64
	}
	var list []scored
	for _, c := range cands {
		if c.Pos.Dist(agentPos) > ce.cfg.CoverMaxDist {
			continue
		}
		n := 0
		if claimed != nil {
			n = claimed(c.Pos)
		}
		list = append(list, scored{c, ce.Score(c, agentPos, threat, engagementRange, n)})
	}
	// Insertion sort: candidate lists are small and the stable order
	// preserves discovery-order tie-breaks.
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].s > list[j-1].s; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
	out := make([]CoverPoint, len(list))
	for i, sc := range list {
		out[i] = sc.c
	}
	return out
}
