package ai

import (
	"strings"
	"testing"
)

func TestExecutor_GrenadeThreatInterruptsImmediately(t *testing.T) {
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(11),
		WithAgent(ClassRifle, 200, 360),
		WithTarget(900, 360),
	)
	ar.RunTicks(10)
	a := ar.Engine.Agent(0)
	if a.State == StateEvadingGrenade {
		t.Fatal("evading with no grenade in play")
	}

	ar.SpawnGrenade(a.Pos, SecondsToTicks(1.0))
	ar.Step()
	if a.State != StateEvadingGrenade {
		t.Fatalf("state %s one tick after a grenade landed at the agent's feet", a.State)
	}
	if !ar.Log.HasEntry("grenade", "evading", "") {
		t.Fatal("evasion not logged")
	}

	// Threat expires and the timer runs out; the planner takes back over.
	ar.RunTicks(SecondsToTicks(3.0))
	if a.State == StateEvadingGrenade {
		t.Fatal("still evading long after the grenade expired")
	}
}

func TestExecutor_BlockedMuzzleNeverFires(t *testing.T) {
	// A low wall corner clips the carried weapon's probe while the
	// sight line to the target stays clear.
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(3),
		WithWall(130, 365, 20, 10),
		WithAgent(ClassRifle, 100, 360),
		WithTarget(400, 360),
	)

	ar.Step()
	a := ar.Engine.Agent(0)
	if !a.TargetVisible {
		t.Fatal("target should be in direct sight")
	}
	if n := ar.Log.CountCategory("fire", "shot"); n != 0 {
		t.Fatalf("%d shots fired with the muzzle obstructed", n)
	}
	if ar.Log.CountCategory("fire", "muzzle_blocked") == 0 {
		t.Fatal("blocked muzzle not detected")
	}

	// Repositioning must eventually clear the probe and allow fire.
	start := a.Pos
	ar.RunTicks(SecondsToTicks(3.0))
	if a.Pos == start {
		t.Fatal("agent never repositioned away from the obstruction")
	}
}

func TestExecutor_StuckPursuitFallsBackToSearch(t *testing.T) {
	// The receiver is walled into a box; shared intel sends it toward
	// the target, and pursuit jams against the box wall with no path
	// out.
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(5),
		WithWall(150, 260, 200, 20),
		WithWall(150, 440, 200, 20),
		WithWall(330, 260, 20, 200),
		WithWall(150, 260, 20, 200),
		WithAgent(ClassRifle, 950, 330), // reporter, clear sight line
		WithAgent(ClassRifle, 250, 360), // receiver, boxed in
		WithTarget(1100, 360),
	)

	receiver := ar.Engine.Agent(1)
	reached := ar.RunUntil(func(*Arena) bool {
		return ar.Log.HasEntry("error", "stuck_recovered", "")
	}, SecondsToTicks(12))
	if !reached {
		t.Fatal("stuck detection never triggered")
	}

	// The failure is recoverable: logged once and answered with a
	// forced search, not an error state.
	if !ar.Log.HasEntry("state", "change", "searching") {
		t.Fatal("no transition into searching after the stall")
	}

	// The planner honors the forced search instead of re-selecting
	// pursuit of the same unreachable point.
	ar.RunTicks(2)
	if !ar.Log.HasEntry("plan", "select", "search") {
		t.Fatal("planner kept pursuing after the stall")
	}
	if receiver.State != StateSearching {
		t.Fatalf("state %s after stall, want searching", receiver.State)
	}
	if !receiver.Alive() {
		t.Fatal("receiver should be untouched")
	}

	// The belief that sent it there arrived over the squad net.
	if !ar.Log.HasEntry("squad", "intel_merge", "") {
		t.Fatal("receiver never merged squad intel")
	}
}

func TestExecutor_MeleeDodgeHasCooldown(t *testing.T) {
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(9),
		WithAgent(ClassMelee, 380, 360),
		WithTarget(400, 360),
		WithTargetFire(1),
	)

	a := ar.Engine.Agent(0)
	ar.Step()
	if a.State != StateDodging {
		t.Fatalf("state %s, want dodging when attacked at melee range", a.State)
	}

	// Within the cooldown window only a bounded number of dodges fit.
	ar.RunTicks(SecondsToTicks(1.5))
	dodges := 0
	for _, e := range ar.Log.Filter("state", "change") {
		if strings.Contains(e.Value, "→ dodging") {
			dodges++
		}
	}
	if dodges < 1 || dodges > 2 {
		t.Fatalf("%d dodges in 1.5s; cooldown should cap this at 2", dodges)
	}
}

func TestExecutor_ContestedCoverSplitsAcrossSquad(t *testing.T) {
	// Both agents stand south of the same wall with the same threat, so
	// they rank the same point behind it first. The claim must go to
	// exactly one of them; the loser re-queries and takes its next-best
	// point in the same tick.
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(13),
		WithWall(500, 300, 60, 120),
		WithAgent(ClassRifle, 420, 460),
		WithAgent(ClassRifle, 436, 460),
		WithTarget(900, 360),
	)

	ar.MarkUnderFire(0)
	ar.MarkUnderFire(1)
	ar.Step()

	first, second := ar.Engine.Agent(0), ar.Engine.Agent(1)
	if first.State != StateSeekingCover || second.State != StateSeekingCover {
		t.Fatalf("states %s / %s, want both seeking cover", first.State, second.State)
	}
	if !first.hasCover || !second.hasCover {
		t.Fatal("both agents should hold an assignment")
	}
	if first.assignedCoverID == second.assignedCoverID {
		t.Fatalf("both agents assigned point %d", first.assignedCoverID)
	}

	assigned := ar.Log.Filter("cover", "assigned")
	if len(assigned) != 2 {
		t.Fatalf("%d assignments logged, want 2", len(assigned))
	}
	if assigned[0].Tick != assigned[1].Tick {
		t.Fatalf("assignments split across ticks %d and %d", assigned[0].Tick, assigned[1].Tick)
	}
	if assigned[0].NumVal == assigned[1].NumVal {
		t.Fatalf("both assignments name point %.0f", assigned[0].NumVal)
	}
	if ar.Log.CountCategory("cover", "claim_lost") == 0 {
		t.Fatal("the contested claim was never detected")
	}
}

func TestExecutor_EvadeExitReacquiresCover(t *testing.T) {
	// Sniper carries no grenades, so the plan at the interrupt's expiry
	// stays seek_cover all the way through.
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(17),
		WithWall(500, 300, 60, 120),
		WithAgent(ClassSniper, 420, 460),
		WithTarget(900, 360),
	)
	a := ar.Engine.Agent(0)

	for i := 0; i < 10; i++ {
		ar.MarkUnderFire(0)
		ar.Step()
	}
	if a.State != StateSeekingCover {
		t.Fatalf("state %s before the grenade, want seeking_cover", a.State)
	}
	before := ar.Log.CountCategory("cover", "assigned")

	ar.SpawnGrenade(a.Pos, SecondsToTicks(1.0))
	ar.Step()
	if a.State != StateEvadingGrenade {
		t.Fatalf("state %s after the grenade landed", a.State)
	}

	// Fire continues through the evasion, so seek_cover is the plan the
	// executor hands control back to.
	exited := false
	for i := 0; i < SecondsToTicks(4.0); i++ {
		ar.MarkUnderFire(0)
		ar.Step()
		if a.State != StateEvadingGrenade {
			exited = true
			break
		}
	}
	if !exited {
		t.Fatal("evasion never released")
	}
	if a.State != StateSeekingCover {
		t.Fatalf("state %s at the interrupt's end, want seeking_cover", a.State)
	}
	if !a.hasCover {
		t.Fatal("re-entry ranked no candidates; no cover held after evading")
	}
	if ar.Log.CountCategory("cover", "assigned") <= before {
		t.Fatal("no fresh assignment logged on the exit tick")
	}
}

func TestExecutor_NextHypothesisClaimsOnlyChosenPoint(t *testing.T) {
	cfg := DefaultTuning()
	sq := NewSquadCoordinator(cfg, nil)
	ex := &Executor{cfg: cfg, squad: sq}

	taken := Hypothesis{Position: Vec2{0, 0}, Kind: HypCover, Probability: 0.5}
	hyps := []Hypothesis{
		taken,
		{Position: Vec2{200, 0}, Kind: HypFlankLeft, Probability: 0.3},
		{Position: Vec2{400, 0}, Kind: HypFlankRight, Probability: 0.2},
	}
	if !sq.Claim(1, taken.Position) {
		t.Fatal("setup claim failed")
	}

	got := ex.nextFreeHypothesis(&Agent{ID: 2}, hyps, taken)
	if got != (Vec2{200, 0}) {
		t.Fatalf("chose (%.0f,%.0f), want the next-best at (200,0)", got.X, got.Y)
	}
	// The lower-probability candidate it passed over must stay open for
	// a squadmate this tick.
	if !sq.Claim(3, Vec2{400, 0}) {
		t.Fatal("a discarded hypothesis was claimed during the probe")
	}
}

func TestExecutor_SeekCoverClaimsAndArrives(t *testing.T) {
	ar := NewArena(
		WithArenaSize(1280, 720),
		WithSeed(21),
		WithWall(500, 300, 60, 120),
		WithAgent(ClassRifle, 420, 360),
		WithTarget(900, 360),
		WithTargetFire(10),
	)

	a := ar.Engine.Agent(0)
	reached := ar.RunUntil(func(*Arena) bool {
		return a.State == StateInCover || a.State == StateSuppressed
	}, SecondsToTicks(10))
	if !reached {
		t.Fatalf("agent never settled into cover, final state %s", a.State)
	}
	if ar.Log.CountCategory("cover", "assigned") == 0 {
		t.Fatal("no cover assignment logged")
	}
}
