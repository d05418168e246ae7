package ai

import "fmt"

// TickInput is everything the surrounding game feeds the decision core
// for one tick: the adversary's true status (gated through perception
// before any agent sees it) and the situation flags only the physics
// layer can know.
type TickInput struct {
	Target TargetSnapshot

	// LiveGrenades are positions of grenades currently in flight or
	// cooking on the ground. Proximity to one raises the evasion
	// interrupt.
	LiveGrenades []Vec2

	// UnderFire marks agents that took a hit or a near miss this tick,
	// keyed by agent ID.
	UnderFire map[int]bool
}

// Engine owns every agent's full decision pass: perception, belief,
// style, prediction, fact building, planning, execution, and squad
// coordination. One call to Tick advances all agents exactly one tick,
// in ascending ID order, so identical inputs replay identically.
type Engine struct {
	rc  Raycaster
	nav NavQuerier
	cfg *Tuning

	Gateway *PerceptionGateway

	planner  *Planner
	executor *Executor
	grenades *GrenadeComponent
	predict  *PredictionEngine
	squad    *SquadCoordinator
	log      *DecisionLog

	agents      []*Agent
	coverPoints []CoverPoint
	tick        int

	lastBand   map[int]ConfidenceBand
	lastAction map[int]string
}

// NewEngine assembles the decision core over game-provided level
// queries. seed fixes the prediction noise stream.
func NewEngine(rc Raycaster, nav NavQuerier, cfg *Tuning, seed int64, log *DecisionLog) *Engine {
	grenades := NewGrenadeComponent(cfg)
	cover := NewCoverEvaluator(rc, cfg)
	predict := NewPredictionEngine(nav, cfg, seed)
	squad := NewSquadCoordinator(cfg, log)
	return &Engine{
		rc:         rc,
		nav:        nav,
		cfg:        cfg,
		Gateway:    NewPerceptionGateway(rc, cfg),
		planner:    NewPlanner(),
		executor:   NewExecutor(rc, nav, cfg, cover, grenades, predict, squad, log),
		grenades:   grenades,
		predict:    predict,
		squad:      squad,
		log:        log,
		lastBand:   make(map[int]ConfidenceBand),
		lastAction: make(map[int]string),
	}
}

// AddAgent spawns an agent at pos with the given loadout and returns
// it. IDs are assigned in spawn order.
func (e *Engine) AddAgent(pos Vec2, lo Loadout) *Agent {
	a := NewAgent(len(e.agents), pos, lo, e.cfg)
	e.agents = append(e.agents, a)
	return a
}

// Agents returns the live agent list in ID order.
func (e *Engine) Agents() []*Agent {
	return e.agents
}

// Agent returns the agent with the given ID, or nil.
func (e *Engine) Agent(id int) *Agent {
	if id < 0 || id >= len(e.agents) {
		return nil
	}
	return e.agents[id]
}

// SetCoverPoints installs the level's discovered cover candidates.
func (e *Engine) SetCoverPoints(pts []CoverPoint) {
	e.coverPoints = pts
}

// Squad exposes the coordinator for death reporting and tests.
func (e *Engine) Squad() *SquadCoordinator {
	return e.squad
}

// Grenades exposes the shared grenade evaluator.
func (e *Engine) Grenades() *GrenadeComponent {
	return e.grenades
}

// Tick runs one full decision pass for every living agent and returns
// their motor commands keyed by agent ID.
func (e *Engine) Tick(input TickInput) map[int]MotorCommand {
	out := make(map[int]MotorCommand, len(e.agents))
	dt := 1.0 / float64(TickRate)

	for _, a := range e.agents {
		if !a.Alive() {
			continue
		}
		e.senseAndBelieve(a, input, dt)
		e.flagSituation(a, input)

		ws := BuildWorldState(a, e.grenades, e.tick)
		action := e.planner.Select(ws)
		e.logChanges(a, ws, action)

		out[a.ID] = e.executor.Step(a, action, ws, e.coverPoints, e.tick)

		e.squad.Broadcast(a, e.tick)
	}

	e.squad.EndTick()
	e.Gateway.EndTick()
	e.tick++
	return out
}

// ReportDeath removes a dead agent's intel and notifies witnesses.
// Call when the physics layer kills an agent.
func (e *Engine) ReportDeath(dead *Agent) {
	e.squad.ReportDeath(dead, e.agents, e.tick)
}

// CurrentTick returns the next tick to be executed.
func (e *Engine) CurrentTick() int {
	return e.tick
}

// senseAndBelieve runs one agent's perception and belief pass. Decay
// is applied before updates so an incoming report competes against the
// already-decayed confidence, never a stale one.
func (e *Engine) senseAndBelieve(a *Agent, input TickInput, dt float64) {
	a.TargetVisible = false
	a.Belief.Decay(dt, e.cfg)

	for _, obs := range e.Gateway.Collect(a.Pos, input.Target, e.tick) {
		switch obs.Kind {
		case ObsSight:
			a.TargetVisible = true
		case ObsReload, ObsEmptyClick:
			a.lastVulnSoundTick = e.tick
		}
		a.Belief.Update(obs, e.cfg)
		a.Style.Observe(obs)
	}

	if a.TargetVisible {
		a.Belief.NoteTargetMotion(input.Target.Velocity)
	} else {
		a.Style.NoteHidden(e.tick)
	}

	a.SquadContact = false
	e.squad.Merge(a, e.tick)
}

// flagSituation refreshes the physics-fed flags and derived timers.
func (e *Engine) flagSituation(a *Agent, input TickInput) {
	a.UnderFire = input.UnderFire[a.ID]

	threat := false
	var threatPos Vec2
	for _, g := range input.LiveGrenades {
		if a.Pos.Dist(g) <= e.cfg.GrenadeThreatRadius {
			threat = true
			threatPos = g
			break
		}
	}
	a.SetGrenadeThreat(threatPos, threat)

	a.refreshTimers(e.tick)
	a.Suppressed = a.underFireSince >= 0 &&
		e.tick-a.underFireSince >= SecondsToTicks(e.cfg.SuppressSeconds)

	// Closing-speed bookkeeping for the under-fire-approach trigger.
	if a.Belief.HasPosition {
		toTarget := a.Belief.Position.Sub(a.Pos).Norm()
		move := a.Motor()
		a.closingOnTarget = move.HasMove && move.MoveTo.Sub(a.Pos).Norm().Dot(toTarget) > 0.5
	} else {
		a.closingOnTarget = false
	}
	switch a.Motor().Speed {
	case SpeedRun:
		a.lastSpeed = a.loadout.MaxSpeed
	case SpeedWalk:
		a.lastSpeed = a.loadout.MaxSpeed * 0.5
	default:
		a.lastSpeed = 0
	}
}

// logChanges emits one entry per observable decision change, keeping
// the log readable at sixty ticks per second.
func (e *Engine) logChanges(a *Agent, ws WorldState, action Action) {
	if band := ws.Belief; band != e.lastBand[a.ID] {
		e.log.Add(e.tick, a.Label, "belief", "band",
			fmt.Sprintf("%s → %s (%.2f)", e.lastBand[a.ID], band, a.Belief.Confidence),
			a.Belief.Confidence)
		e.lastBand[a.ID] = band
	}
	if action.Name != e.lastAction[a.ID] {
		e.log.Add(e.tick, a.Label, "plan", "select", action.Name, action.Cost)
		e.lastAction[a.ID] = action.Name
	}
}
