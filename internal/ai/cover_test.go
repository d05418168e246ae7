package ai

import "testing"

func TestCover_ProtectedPointOutscoresOpenGround(t *testing.T) {
	// A block in the middle of the field; one candidate hides behind
	// it relative to the threat, one stands in the open.
	lvl := NewLevel(800, 800, []Rect{{X: 380, Y: 300, W: 40, H: 200}}, 8)
	ce := NewCoverEvaluator(lvl, DefaultTuning())

	threat := Vec2{700, 400}
	agent := Vec2{300, 400}
	behind := CoverPoint{ID: 0, Pos: Vec2{340, 400}} // block between it and the threat
	open := CoverPoint{ID: 1, Pos: Vec2{340, 120}}   // clear line to the threat

	sBehind := ce.Score(behind, agent, threat, 400, 0)
	sOpen := ce.Score(open, agent, threat, 400, 0)
	if sBehind <= sOpen {
		t.Fatalf("occluded point scored %.3f, open point %.3f", sBehind, sOpen)
	}

	best, ok := ce.Best([]CoverPoint{open, behind}, agent, threat, 400, nil)
	if !ok {
		t.Fatal("no cover selected")
	}
	if best.ID != behind.ID {
		t.Fatalf("best picked point %d, want %d", best.ID, behind.ID)
	}
}

func TestCover_ClusterPenaltyRepelsSquadmates(t *testing.T) {
	lvl := NewLevel(800, 800, []Rect{{X: 380, Y: 300, W: 40, H: 200}}, 8)
	ce := NewCoverEvaluator(lvl, DefaultTuning())

	c := CoverPoint{ID: 0, Pos: Vec2{340, 400}}
	threat := Vec2{700, 400}
	agent := Vec2{300, 400}

	unclaimed := ce.Score(c, agent, threat, 400, 0)
	crowded := ce.Score(c, agent, threat, 400, 2)
	if crowded >= unclaimed {
		t.Fatalf("two nearby claims did not lower the score: %.3f vs %.3f", crowded, unclaimed)
	}
}

func TestCover_CandidatesBeyondMaxDistIgnored(t *testing.T) {
	lvl := NewLevel(2000, 2000, nil, 8)
	cfg := DefaultTuning()
	ce := NewCoverEvaluator(lvl, cfg)

	far := CoverPoint{ID: 0, Pos: Vec2{1900, 1900}}
	if _, ok := ce.Best([]CoverPoint{far}, Vec2{100, 100}, Vec2{500, 500}, 400, nil); ok {
		t.Fatal("candidate beyond CoverMaxDist was selected")
	}
}

func TestCover_RankedIsBestFirst(t *testing.T) {
	lvl := NewLevel(800, 800, []Rect{{X: 380, Y: 300, W: 40, H: 200}}, 8)
	ce := NewCoverEvaluator(lvl, DefaultTuning())

	threat := Vec2{700, 400}
	agent := Vec2{300, 400}
	cands := []CoverPoint{
		{ID: 0, Pos: Vec2{340, 120}},
		{ID: 1, Pos: Vec2{340, 400}},
		{ID: 2, Pos: Vec2{340, 680}},
	}

	ranked := ce.Ranked(cands, agent, threat, 400, nil)
	if len(ranked) != 3 {
		t.Fatalf("ranked %d candidates, want 3", len(ranked))
	}
	best, _ := ce.Best(cands, agent, threat, 400, nil)
	if ranked[0].ID != best.ID {
		t.Fatalf("ranked[0] is %d, Best is %d", ranked[0].ID, best.ID)
	}
	prev := ce.Score(ranked[0], agent, threat, 400, 0)
	for _, c := range ranked[1:] {
		s := ce.Score(c, agent, threat, 400, 0)
		if s > prev {
			t.Fatalf("ranked order not descending: %.3f after %.3f", s, prev)
		}
		prev = s
	}
}

func TestLevel_LineOfSightAndBlocker(t *testing.T) {
	lvl := NewLevel(800, 800, []Rect{{X: 390, Y: 350, W: 20, H: 100}}, 8)

	if lvl.LineOfSight(Vec2{100, 400}, Vec2{700, 400}) {
		t.Fatal("segment through the wall reported clear")
	}
	if !lvl.LineOfSight(Vec2{100, 100}, Vec2{700, 100}) {
		t.Fatal("clear segment reported blocked")
	}

	hit, ok := lvl.FirstBlocker(Vec2{100, 400}, Vec2{700, 400})
	if !ok {
		t.Fatal("no blocker found on obstructed segment")
	}
	if hit.X < 385 || hit.X > 395 {
		t.Fatalf("blocker at x=%.1f, want the wall's near face around 390", hit.X)
	}
}

func TestLevel_FindPathRoutesAroundWall(t *testing.T) {
	lvl := NewLevel(800, 800, []Rect{{X: 380, Y: 0, W: 40, H: 600}}, 8)

	path := lvl.FindPath(Vec2{100, 300}, Vec2{700, 300})
	if path == nil {
		t.Fatal("no path found around the wall")
	}
	// The route must pass below the wall's end.
	maxY := 0.0
	for _, p := range path {
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if maxY < 600 {
		t.Fatalf("path never cleared the wall, deepest point y=%.0f", maxY)
	}

	if d, ok := lvl.PathLength(Vec2{100, 300}, Vec2{700, 300}); !ok || d <= 600 {
		t.Fatalf("path length %.0f, want a detour longer than the straight line", d)
	}
}

func TestLevel_NearestNavigableLeavesWalls(t *testing.T) {
	lvl := NewLevel(800, 800, []Rect{{X: 300, Y: 300, W: 200, H: 200}}, 8)

	inside := Vec2{400, 400}
	if lvl.Navigable(inside) {
		t.Fatal("point inside the wall reported navigable")
	}
	out := lvl.NearestNavigable(inside)
	if !lvl.Navigable(out) {
		t.Fatalf("clipped point %v still blocked", out)
	}

	clear := Vec2{100, 100}
	if got := lvl.NearestNavigable(clear); got != clear {
		t.Fatalf("navigable point moved from %v to %v", clear, got)
	}
}
