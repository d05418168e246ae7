package ai

// Arena is a headless scenario harness used by tests and the skirmish
// runner. It owns the level, the engine, a scripted adversary, and a
// minimal motor layer that applies commands to agent positions. Fully
// deterministic: same options, same seed, same log.
type Arena struct {
	Level  *Level
	Engine *Engine
	Log    *DecisionLog
	Tick   int

	width, height float64
	walls         []Rect
	seed          int64
	verbose       bool
	cfg           *Tuning

	target      TargetSnapshot
	targetPath  []Vec2
	targetLeg   int
	targetSpeed float64
	fireEvery   int // ticks between scripted target shots; 0 = never

	grenades      []liveGrenade
	underFireTill map[int]int
}

type liveGrenade struct {
	pos        Vec2
	detonateAt int
}

// arenaOptionKind controls the pass in which an option is applied.
type arenaOptionKind int

const (
	arenaOptInfra arenaOptionKind = iota // size, walls, seed, verbose
	arenaOptAgent                        // spawn agents after the level exists
)

// ArenaOption is a builder function applied during construction.
type ArenaOption struct {
	kind arenaOptionKind
	fn   func(*Arena)
}

// WithArenaSize sets the playfield dimensions in pixels.
func WithArenaSize(w, h float64) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.width = w
		ar.height = h
	}}
}

// WithWall adds an obstacle rectangle.
func WithWall(x, y, w, h float64) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.walls = append(ar.walls, Rect{X: x, Y: y, W: w, H: h})
	}}
}

// WithSeed fixes the prediction noise stream for deterministic runs.
func WithSeed(seed int64) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.verbose = v
	}}
}

// WithTuning overrides the default tuning constants.
func WithTuning(cfg *Tuning) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.cfg = cfg
	}}
}

// WithAgent spawns an agent of the given class at (x, y).
func WithAgent(class AgentClass, x, y float64) ArenaOption {
	return ArenaOption{arenaOptAgent, func(ar *Arena) {
		ar.Engine.AddAgent(Vec2{x, y}, DefaultLoadout(class))
	}}
}

// WithTarget places the adversary at (x, y), alive and stationary.
func WithTarget(x, y float64) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.target = TargetSnapshot{Pos: Vec2{x, y}, Alive: true}
	}}
}

// WithTargetPath scripts the adversary to walk the waypoints in order,
// stopping at the last.
func WithTargetPath(speed float64, waypoints ...Vec2) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.targetPath = waypoints
		ar.targetSpeed = speed
	}}
}

// WithTargetFire scripts the adversary to shoot at the nearest visible
// agent every interval ticks.
func WithTargetFire(interval int) ArenaOption {
	return ArenaOption{arenaOptInfra, func(ar *Arena) {
		ar.fireEvery = interval
	}}
}

// NewArena constructs an arena in ordered passes: infrastructure
// first, then the level and engine, then agents.
func NewArena(opts ...ArenaOption) *Arena {
	ar := &Arena{
		width:         1280,
		height:        720,
		seed:          1,
		underFireTill: make(map[int]int),
	}
	for _, o := range opts {
		if o.kind == arenaOptInfra {
			o.fn(ar)
		}
	}
	if ar.cfg == nil {
		ar.cfg = DefaultTuning()
	}
	ar.Log = NewDecisionLog(ar.verbose)
	ar.Level = NewLevel(ar.width, ar.height, ar.walls, 8)
	ar.Engine = NewEngine(ar.Level, ar.Level, ar.cfg, ar.seed, ar.Log)
	ar.Engine.SetCoverPoints(ar.Level.DiscoverCoverPoints(20))
	for _, o := range opts {
		if o.kind == arenaOptAgent {
			o.fn(ar)
		}
	}
	return ar
}

// Target returns the adversary's current snapshot.
func (ar *Arena) Target() TargetSnapshot {
	return ar.target
}

// MoveTarget teleports the adversary.
func (ar *Arena) MoveTarget(p Vec2) {
	ar.target.Pos = p
}

// KillTarget marks the adversary dead; perception stops producing
// sightings of it.
func (ar *Arena) KillTarget() {
	ar.target.Alive = false
}

// SpawnGrenade drops a live enemy grenade that detonates after
// fuseTicks. Agents within the threat radius evade it.
func (ar *Arena) SpawnGrenade(pos Vec2, fuseTicks int) {
	ar.grenades = append(ar.grenades, liveGrenade{pos: pos, detonateAt: ar.Tick + fuseTicks})
}

// MarkUnderFire flags an agent as hit or near-missed. The flag
// persists for half a second, matching how long a near miss keeps a
// combatant's head down.
func (ar *Arena) MarkUnderFire(id int) {
	ar.underFireTill[id] = ar.Tick + SecondsToTicks(0.5)
}

// PostSound injects a world sound event for the next tick.
func (ar *Arena) PostSound(kind ObservationKind, origin Vec2, strength float64) {
	ar.Engine.Gateway.Post(kind, origin, Vec2{}, strength, ar.Tick)
}

// Step advances the world one tick: scripted adversary first, then the
// decision engine, then motor application.
func (ar *Arena) Step() {
	ar.advanceTarget()
	ar.scriptedFire()

	input := TickInput{
		Target:    ar.target,
		UnderFire: make(map[int]bool),
	}
	for id, till := range ar.underFireTill {
		if ar.Tick < till {
			input.UnderFire[id] = true
		}
	}
	for _, g := range ar.grenades {
		input.LiveGrenades = append(input.LiveGrenades, g.pos)
	}

	cmds := ar.Engine.Tick(input)
	for _, a := range ar.Engine.Agents() {
		if !a.Alive() {
			continue
		}
		ar.applyMotor(a, cmds[a.ID])
	}

	ar.expireGrenades()
	ar.Tick++
}

// RunTicks advances the world n ticks.
func (ar *Arena) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ar.Step()
	}
}

// RunUntil steps until pred holds or maxTicks elapse. Reports whether
// the predicate was reached.
func (ar *Arena) RunUntil(pred func(*Arena) bool, maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		ar.Step()
		if pred(ar) {
			return true
		}
	}
	return false
}

// advanceTarget walks the adversary along its scripted path.
func (ar *Arena) advanceTarget() {
	ar.target.Velocity = Vec2{}
	if !ar.target.Alive || ar.targetLeg >= len(ar.targetPath) {
		return
	}
	dest := ar.targetPath[ar.targetLeg]
	step := ar.targetSpeed / float64(TickRate)
	d := dest.Sub(ar.target.Pos)
	if d.Len() <= step {
		ar.target.Pos = dest
		ar.targetLeg++
		return
	}
	dir := d.Norm()
	ar.target.Velocity = dir.Scale(ar.targetSpeed)
	ar.target.Pos = ar.target.Pos.Add(dir.Scale(step))
}

// scriptedFire makes the adversary shoot the nearest agent it can see,
// producing the sound/flash events and the under-fire flag a real shot
// would.
func (ar *Arena) scriptedFire() {
	if ar.fireEvery <= 0 || !ar.target.Alive || ar.Tick%ar.fireEvery != 0 {
		return
	}
	var victim *Agent
	bestD := 0.0
	for _, a := range ar.Engine.Agents() {
		if !a.Alive() || !ar.Level.LineOfSight(ar.target.Pos, a.Pos) {
			continue
		}
		if d := ar.target.Pos.Dist(a.Pos); victim == nil || d < bestD {
			victim = a
			bestD = d
		}
	}
	if victim == nil {
		return
	}
	dir := victim.Pos.Sub(ar.target.Pos).Norm()
	ar.Engine.Gateway.Post(ObsGunshot, ar.target.Pos, dir, 1.0, ar.Tick)
	ar.Engine.Gateway.Post(ObsMuzzleFlash, ar.target.Pos, dir, 1.0, ar.Tick)
	ar.MarkUnderFire(victim.ID)
}

// applyMotor moves an agent along the nav path toward its commanded
// destination and resolves its discrete actions.
func (ar *Arena) applyMotor(a *Agent, cmd MotorCommand) {
	if cmd.ThrowGrenade {
		// Grenade arms on landing; fuse roughly two seconds.
		ar.grenades = append(ar.grenades, liveGrenade{
			pos:        cmd.GrenadeTarget,
			detonateAt: ar.Tick + SecondsToTicks(2.0),
		})
	}

	if !cmd.HasMove || cmd.Speed == SpeedHold {
		return
	}
	speed := a.Loadout().MaxSpeed
	if cmd.Speed == SpeedWalk {
		speed *= 0.5
	}
	step := speed / float64(TickRate)

	next := cmd.MoveTo
	if path := ar.Level.FindPath(a.Pos, cmd.MoveTo); len(path) > 1 {
		next = path[1]
	}
	d := next.Sub(a.Pos)
	if d.Len() <= step {
		a.Pos = next
		return
	}
	dest := a.Pos.Add(d.Norm().Scale(step))
	for _, w := range ar.walls {
		if w.contains(dest) {
			return
		}
	}
	a.Pos = dest
}

func (ar *Arena) expireGrenades() {
	kept := ar.grenades[:0]
	for _, g := range ar.grenades {
		if ar.Tick < g.detonateAt {
			kept = append(kept, g)
		}
	}
	ar.grenades = kept
}
