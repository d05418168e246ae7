package ai

import (
	"fmt"
	"math"
)

// muzzleSideOffset is the weapon's lateral carry offset in pixels.
const muzzleSideOffset = 6

// Executor maps the planner's chosen action onto the tactical state
// machine and drives movement, aim and fire until the state exits.
// Each state owns an entry action, a per-tick update, and an exit
// condition; the planner re-selecting a different action is the normal
// exit path.
type Executor struct {
	rc       Raycaster
	nav      NavQuerier
	cfg      *Tuning
	cover    *CoverEvaluator
	grenades *GrenadeComponent
	predict  *PredictionEngine
	squad    *SquadCoordinator
	log      *DecisionLog
}

// NewExecutor wires an executor over the shared components.
func NewExecutor(rc Raycaster, nav NavQuerier, cfg *Tuning, cover *CoverEvaluator,
	grenades *GrenadeComponent, predict *PredictionEngine, squad *SquadCoordinator,
	log *DecisionLog) *Executor {
	return &Executor{
		rc:       rc,
		nav:      nav,
		cfg:      cfg,
		cover:    cover,
		grenades: grenades,
		predict:  predict,
		squad:    squad,
		log:      log,
	}
}

// Step runs one agent for one tick: interrupts first, then the
// planner's action, then the active state's update. Returns the motor
// command for this tick.
func (ex *Executor) Step(a *Agent, action Action, ws WorldState, coverCands []CoverPoint, tick int) MotorCommand {
	a.motor = MotorCommand{}
	a.action = action
	if action.State == StateThrowingGrenade && a.pendingThrow == TriggerNone {
		a.pendingThrow = ws.GrenadeTrigger
	}

	// The grenade-evasion interrupt pre-empts everything, including the
	// planner's choice, for its whole duration.
	if a.GrenadeThreatActive && a.State != StateEvadingGrenade {
		ex.enterEvade(a, tick)
	}

	if a.State == StateEvadingGrenade {
		if tick >= a.evadeUntil && !a.GrenadeThreatActive {
			// Interrupt over: hand control back to the planner. The exit
			// happens here rather than inside the evade update so the
			// entered state gets this tick's cover candidates.
			ex.transition(a, action.State, coverCands, tick)
		} else {
			ex.updateEvade(a, tick)
			return a.motor
		}
	}

	// Dodging runs to completion before the planner regains control.
	if a.State == StateDodging {
		ex.updateDodge(a, tick)
		return a.motor
	}

	if action.State != a.State {
		ex.transition(a, action.State, coverCands, tick)
	}

	switch a.State {
	case StateIdle:
		ex.updateIdle(a, tick)
	case StateCombat:
		ex.updateCombat(a, tick)
	case StateSeekingCover:
		ex.updateSeekingCover(a, tick)
	case StateInCover:
		ex.updateInCover(a, tick)
	case StateFlanking:
		ex.updateFlanking(a, tick)
	case StateSuppressed:
		ex.updateSuppressed(a, tick)
	case StateRetreating:
		ex.updateRetreating(a, tick)
	case StatePursuing:
		ex.updatePursuing(a, tick)
	case StateAssault:
		ex.updateAssault(a, tick)
	case StateSearching:
		ex.updateSearching(a, tick)
	case StateThrowingGrenade:
		ex.updateThrowingGrenade(a, tick)
	}
	return a.motor
}

// transition leaves the current state and enters the new one.
func (ex *Executor) transition(a *Agent, to TacticalState, coverCands []CoverPoint, tick int) {
	from := a.State
	a.State = to
	a.stateEnteredTick = tick
	ex.log.Add(tick, a.Label, "state", "change", fmt.Sprintf("%s → %s", from, to), 0)

	// A forced search keeps the stuck flag so the planner does not
	// immediately re-select pursuit of an unreachable point. Any other
	// transition clears it.
	if to != StateSearching {
		a.stuckDetected = false
	}

	switch to {
	case StateSeekingCover:
		ex.enterSeekingCover(a, coverCands, tick)
	case StatePursuing:
		ex.enterPursuing(a, tick)
	}
}

// --- Idle / Patrol ---

func (ex *Executor) updateIdle(a *Agent, tick int) {
	// Hold position and sweep the facing slowly so perception keeps
	// covering new arcs. Missing target is not an error condition.
	sweep := float64(tick-a.stateEnteredTick) * 0.01
	a.Facing = FromHeading(sweep)
	a.motor.aimAt(a.Pos.Add(a.Facing.Scale(100)))
	a.motor.Speed = SpeedHold
}

// --- Combat ---

func (ex *Executor) updateCombat(a *Agent, tick int) {
	if !a.Belief.HasPosition {
		return
	}
	target := a.Belief.Position
	a.Facing = target.Sub(a.Pos).Norm()
	a.motor.aimAt(target)

	dist := a.Pos.Dist(target)
	switch {
	case dist > a.loadout.EngagementRange:
		a.motor.moveTo(ex.nav.NearestNavigable(target), SpeedWalk)
	case dist < ex.cfg.ShortRange*0.5 && !a.loadout.MeleeCapable:
		// Too close for comfort: open distance while firing.
		back := a.Pos.Add(a.Pos.Sub(target).Norm().Scale(ex.cfg.ShortRange))
		a.motor.moveTo(ex.nav.NearestNavigable(back), SpeedWalk)
	}

	ex.tryFire(a, target, tick)
}

// tryFire applies both firing gates: line of sight to the target AND a
// clear muzzle probe. Both must pass. A blocked muzzle forces an active
// lateral reposition, never a standing wait.
func (ex *Executor) tryFire(a *Agent, target Vec2, tick int) {
	if !a.TargetVisible || a.Ammo <= 0 {
		return
	}
	if !ex.rc.LineOfSight(a.Pos, target) {
		return
	}
	// The probe casts from the carried weapon's offset, not the eye:
	// a wall corner can clip the barrel while the sight line is clear.
	aimDir := target.Sub(a.Pos).Norm()
	muzzle := a.Pos.Add(aimDir.Perp().Scale(muzzleSideOffset))
	probeEnd := muzzle.Add(aimDir.Scale(ex.cfg.MuzzleProbeDist))
	if _, blocked := ex.rc.FirstBlocker(muzzle, probeEnd); blocked {
		ex.repositionForClearMuzzle(a, aimDir, tick)
		return
	}
	a.motor.Fire = true
	a.motor.FireDir = aimDir
	ex.log.AddVerbose(tick, a.Label, "fire", "shot", fmt.Sprintf("at (%.0f,%.0f)", target.X, target.Y), 0)
}

// repositionForClearMuzzle sidesteps the agent so the muzzle probe can
// clear, alternating sides when one direction stops making progress.
func (ex *Executor) repositionForClearMuzzle(a *Agent, aimDir Vec2, tick int) {
	if a.repositionDir == 0 {
		a.repositionDir = 1
	}
	side := aimDir.Perp().Scale(ex.cfg.RepositionStep * a.repositionDir)
	dest := ex.nav.NearestNavigable(a.Pos.Add(side))
	if dest.Dist(a.Pos) < ex.cfg.RepositionStep*0.25 {
		a.repositionDir = -a.repositionDir
		side = aimDir.Perp().Scale(ex.cfg.RepositionStep * a.repositionDir)
		dest = ex.nav.NearestNavigable(a.Pos.Add(side))
	}
	a.motor.moveTo(dest, SpeedWalk)
	ex.log.Add(tick, a.Label, "fire", "muzzle_blocked", "repositioning", 0)
}

// --- Cover ---

func (ex *Executor) enterSeekingCover(a *Agent, cands []CoverPoint, tick int) {
	threat := a.Belief.Position
	if !a.Belief.HasPosition {
		threat = a.Pos.Add(a.Facing.Scale(100))
	}

	claimed := func(p Vec2) int { return ex.squad.ClaimedNearby(a.ID, p) }
	ranked := ex.cover.Ranked(cands, a.Pos, threat, a.loadout.EngagementRange, claimed)

	a.hasCover = false
	for _, c := range ranked {
		if ex.squad.Claim(a.ID, c.Pos) {
			a.assignedCoverID = c.ID
			a.coverPos = c.Pos
			a.hasCover = true
			ex.log.Add(tick, a.Label, "cover", "assigned",
				fmt.Sprintf("point %d (%.0f,%.0f)", c.ID, c.Pos.X, c.Pos.Y), float64(c.ID))
			break
		}
		ex.log.Add(tick, a.Label, "cover", "claim_lost",
			fmt.Sprintf("point %d taken, requerying", c.ID), float64(c.ID))
	}
}

func (ex *Executor) updateSeekingCover(a *Agent, tick int) {
	if !a.hasCover {
		// No usable cover in range: fall back to opening distance.
		ex.updateRetreating(a, tick)
		return
	}
	if a.Pos.Dist(a.coverPos) < 8 {
		ex.transition(a, StateInCover, nil, tick)
		return
	}
	a.motor.moveTo(a.coverPos, SpeedRun)
	if a.Belief.HasPosition {
		a.motor.aimAt(a.Belief.Position)
	}
}

func (ex *Executor) updateInCover(a *Agent, tick int) {
	a.motor.Speed = SpeedHold
	if a.Belief.HasPosition {
		a.Facing = a.Belief.Position.Sub(a.Pos).Norm()
		a.motor.aimAt(a.Belief.Position)
		ex.tryFire(a, a.Belief.Position, tick)
	}
	// Re-claim so squadmates keep clustering penalties while we hold.
	if a.hasCover {
		ex.squad.Claim(a.ID, a.coverPos)
	}
}

// --- Flanking ---

func (ex *Executor) updateFlanking(a *Agent, tick int) {
	if !a.Belief.HasPosition {
		return
	}
	toTarget := a.Belief.Position.Sub(a.Pos).Norm()
	if a.repositionDir == 0 {
		a.repositionDir = 1
	}
	flank := a.Belief.Position.Add(toTarget.Perp().Scale(ex.cfg.FlankOffset * a.repositionDir))
	dest := ex.nav.NearestNavigable(flank)
	if ex.squad.Claim(a.ID, dest) {
		a.motor.moveTo(dest, SpeedRun)
	} else {
		// Mirror side when a squadmate already took this flank.
		a.repositionDir = -a.repositionDir
		flank = a.Belief.Position.Add(toTarget.Perp().Scale(ex.cfg.FlankOffset * a.repositionDir))
		a.motor.moveTo(ex.nav.NearestNavigable(flank), SpeedRun)
	}
	a.motor.aimAt(a.Belief.Position)
}

// --- Suppressed ---

func (ex *Executor) updateSuppressed(a *Agent, tick int) {
	// Pinned: hold low in cover, keep the threat covered, do not fire.
	a.motor.Speed = SpeedHold
	if a.Belief.HasPosition {
		a.Facing = a.Belief.Position.Sub(a.Pos).Norm()
		a.motor.aimAt(a.Belief.Position)
	}
}

// --- Retreating ---

func (ex *Executor) updateRetreating(a *Agent, tick int) {
	away := a.Facing.Scale(-1)
	if a.Belief.HasPosition {
		away = a.Pos.Sub(a.Belief.Position).Norm()
	}
	dest := ex.nav.NearestNavigable(a.Pos.Add(away.Scale(ex.cfg.FarRange * 0.6)))
	a.motor.moveTo(dest, SpeedRun)
	if a.Belief.HasPosition {
		a.motor.aimAt(a.Belief.Position)
	}
}

// --- Pursuing ---

func (ex *Executor) enterPursuing(a *Agent, tick int) {
	a.progressAnchor = a.Pos
	a.progressTick = tick
	a.hasIntercept = false
}

func (ex *Executor) updatePursuing(a *Agent, tick int) {
	if ex.checkStuck(a, tick) {
		return
	}

	hyps := ex.predict.Hypotheses(a.Pos, &a.Belief, a.Style.Style(tick), tick)
	if best, ok := ex.predict.Intercept(a.Pos, hyps); ok {
		dest := best.Position
		if !ex.squad.Claim(a.ID, dest) {
			// Intercept point already claimed: take the next-best
			// hypothesis this same tick.
			dest = ex.nextFreeHypothesis(a, hyps, best)
		}
		a.interceptPos = dest
		a.hasIntercept = true
		ex.log.AddVerbose(tick, a.Label, "predict", "intercept",
			fmt.Sprintf("%s (%.0f,%.0f) p=%.2f", best.Kind, dest.X, dest.Y, best.Probability), best.Probability)
	}
	if !a.hasIntercept {
		if !a.Belief.HasPosition {
			return
		}
		a.interceptPos = a.Belief.Position
	}

	a.Facing = a.interceptPos.Sub(a.Pos).Norm()
	a.motor.moveTo(a.interceptPos, SpeedRun)
	a.motor.aimAt(a.interceptPos)

	a.passageAhead = ex.detectPassage(a)
}

// nextFreeHypothesis claims and returns the best unclaimed hypothesis
// position, falling back to the contested one if everything is taken.
// Candidates are probed in probability order and only the point
// actually kept is claimed, so the rest stay open for squadmates this
// tick.
func (ex *Executor) nextFreeHypothesis(a *Agent, hyps []Hypothesis, taken Hypothesis) Vec2 {
	tried := make([]bool, len(hyps))
	for {
		best := -1
		for i, h := range hyps {
			if tried[i] || h.Position == taken.Position {
				continue
			}
			if best < 0 || h.Probability > hyps[best].Probability {
				best = i
			}
		}
		if best < 0 {
			return taken.Position
		}
		if ex.squad.Claim(a.ID, hyps[best].Position) {
			return hyps[best].Position
		}
		tried[best] = true
	}
}

// checkStuck forces Searching when pursuit has made no positional
// progress for the configured window. Logged as recoverable; never
// propagated.
func (ex *Executor) checkStuck(a *Agent, tick int) bool {
	if a.Pos.Dist(a.progressAnchor) >= ex.cfg.StuckMinProgress {
		a.progressAnchor = a.Pos
		a.progressTick = tick
		return false
	}
	if tick-a.progressTick < SecondsToTicks(ex.cfg.StuckSeconds) {
		return false
	}
	a.stuckDetected = true
	ex.log.Add(tick, a.Label, "error", "stuck_recovered",
		fmt.Sprintf("no progress for %.1fs, forcing search", ex.cfg.StuckSeconds), 0)
	ex.transition(a, StateSearching, nil, tick)
	ex.updateSearching(a, tick)
	return true
}

// detectPassage probes for a narrow corridor directly ahead: open
// straight on, walls close on both sides.
func (ex *Executor) detectPassage(a *Agent) bool {
	ahead := a.Facing.Norm()
	if ahead.IsZero() {
		return false
	}
	probeBase := a.Pos.Add(ahead.Scale(80))
	if !ex.rc.LineOfSight(a.Pos, probeBase) {
		return false
	}
	left := probeBase.Add(ahead.Perp().Scale(ex.cfg.PassageProbeWidth))
	right := probeBase.Sub(ahead.Perp().Scale(ex.cfg.PassageProbeWidth))
	return !ex.rc.LineOfSight(probeBase, left) && !ex.rc.LineOfSight(probeBase, right)
}

// --- Assault ---

func (ex *Executor) updateAssault(a *Agent, tick int) {
	if !a.Belief.HasPosition {
		return
	}
	target := a.Belief.Position
	a.Facing = target.Sub(a.Pos).Norm()
	a.motor.aimAt(target)

	dist := a.Pos.Dist(target)
	if a.loadout.MeleeCapable && dist <= ex.cfg.MeleeRange {
		a.motor.Melee = true
		// Attacking at melee range with a ranged threat nearby: dodge
		// sideways rather than eating the shot. Cooldown stops
		// oscillating back and forth.
		if a.UnderFire && tick >= a.dodgeReadyTick {
			ex.enterDodge(a, target, tick)
			return
		}
		a.motor.Speed = SpeedHold
		return
	}

	a.motor.moveTo(ex.nav.NearestNavigable(target), SpeedRun)
	if !a.loadout.MeleeCapable {
		ex.tryFire(a, target, tick)
	}
}

// --- Searching ---

func (ex *Executor) updateSearching(a *Agent, tick int) {
	center := a.Belief.Position
	if !a.Belief.HasPosition {
		// Nothing to search around: orbit the current position until
		// the planner drops to Patrol.
		center = a.Pos
	}

	// Sweep waypoints on a ring around the suspicion, advancing every
	// couple of seconds. Walk speed: this is the cautious approach.
	phase := (tick - a.stateEnteredTick) / SecondsToTicks(2.0)
	angle := float64(phase) * (math.Pi / 2)
	dest := ex.nav.NearestNavigable(center.Add(FromHeading(angle).Scale(ex.cfg.SearchSweepRadius)))
	a.Facing = dest.Sub(a.Pos).Norm()
	a.motor.moveTo(dest, SpeedWalk)
	a.motor.aimAt(center)
}

// --- Grenade evasion ---

func (ex *Executor) enterEvade(a *Agent, tick int) {
	from := a.State
	a.State = StateEvadingGrenade
	a.stateEnteredTick = tick
	a.evadeUntil = tick + SecondsToTicks(ex.cfg.EvadeSeconds)

	away := a.Pos.Sub(a.grenadeThreatPos).Norm()
	if away.IsZero() {
		away = a.Facing.Scale(-1)
	}
	a.evadeTo = ex.nav.NearestNavigable(a.Pos.Add(away.Scale(ex.cfg.GrenadeThreatRadius * 1.5)))
	ex.log.Add(tick, a.Label, "state", "change", fmt.Sprintf("%s → %s", from, a.State), 0)
	ex.log.Add(tick, a.Label, "grenade", "evading",
		fmt.Sprintf("threat at (%.0f,%.0f)", a.grenadeThreatPos.X, a.grenadeThreatPos.Y), 0)
}

func (ex *Executor) updateEvade(a *Agent, tick int) {
	a.motor.moveTo(a.evadeTo, SpeedRun)
}

// --- Grenade throw ---

func (ex *Executor) updateThrowingGrenade(a *Agent, tick int) {
	trigger := a.pendingThrow
	if trigger == TriggerNone {
		return
	}
	target, ok := ex.grenades.Target(a, trigger)
	if !ok {
		// Safety check failed at release: skip this tick, the trigger
		// re-evaluates next tick if still satisfied.
		ex.log.Add(tick, a.Label, "grenade", "rejected_unsafe",
			fmt.Sprintf("trigger %s", trigger), 0)
		a.pendingThrow = TriggerNone
		return
	}
	a.Facing = target.Sub(a.Pos).Norm()
	a.motor.aimAt(target)
	a.motor.ThrowGrenade = true
	a.motor.GrenadeKind = GrenadeFrag
	a.motor.GrenadeTarget = target
	ex.grenades.CommitThrow(a, trigger, tick)
	ex.log.Add(tick, a.Label, "grenade", "thrown",
		fmt.Sprintf("%s at (%.0f,%.0f)", trigger, target.X, target.Y), float64(a.Grenades))
	a.pendingThrow = TriggerNone
}

// --- Dodging ---

func (ex *Executor) enterDodge(a *Agent, threat Vec2, tick int) {
	from := a.State
	a.State = StateDodging
	a.stateEnteredTick = tick

	incoming := a.Pos.Sub(threat).Norm() // projectile travel direction
	if a.repositionDir == 0 {
		a.repositionDir = 1
	}
	a.repositionDir = -a.repositionDir // alternate sides
	step := incoming.Perp().Scale(ex.cfg.DodgeStep * a.repositionDir)
	a.evadeTo = ex.nav.NearestNavigable(a.Pos.Add(step))
	a.dodgeReadyTick = tick + SecondsToTicks(ex.cfg.DodgeCooldownSeconds)
	ex.log.Add(tick, a.Label, "state", "change", fmt.Sprintf("%s → %s", from, a.State), 0)
}

func (ex *Executor) updateDodge(a *Agent, tick int) {
	a.motor.moveTo(a.evadeTo, SpeedRun)
	arrived := a.Pos.Dist(a.evadeTo) < 6
	expired := tick-a.stateEnteredTick > SecondsToTicks(0.5)
	if arrived || expired {
		ex.transition(a, StateAssault, nil, tick)
	}
}
