package ai

// Raycaster answers line-of-sight queries against level geometry.
// Implemented by the level/physics layer; the core never owns geometry.
type Raycaster interface {
	// LineOfSight reports whether a straight segment from a to b is
	// unobstructed.
	LineOfSight(a, b Vec2) bool

	// FirstBlocker returns the nearest obstruction point along the
	// segment from a to b. ok is false when the segment is clear.
	FirstBlocker(a, b Vec2) (hit Vec2, ok bool)
}

// NavQuerier answers navigability and path queries.
type NavQuerier interface {
	// FindPath returns world-space waypoints from a to b, or nil when
	// no path exists.
	FindPath(a, b Vec2) []Vec2

	// Navigable reports whether p is standable ground.
	Navigable(p Vec2) bool

	// NearestNavigable clips p to the closest standable point.
	NearestNavigable(p Vec2) Vec2

	// PathLength returns the walkable distance from a to b.
	// ok is false when no path exists.
	PathLength(a, b Vec2) (float64, bool)
}

// SpeedClass is the movement urgency requested from the motor layer.
type SpeedClass int

const (
	SpeedHold SpeedClass = iota // stay put
	SpeedWalk                   // cautious advance
	SpeedRun                    // full speed
)

func (sc SpeedClass) String() string {
	switch sc {
	case SpeedHold:
		return "hold"
	case SpeedWalk:
		return "walk"
	case SpeedRun:
		return "run"
	default:
		return "unknown"
	}
}

// GrenadeKind selects the projectile type for a throw request.
type GrenadeKind int

const (
	GrenadeFrag GrenadeKind = iota
	GrenadeConcussion
)

func (gk GrenadeKind) String() string {
	switch gk {
	case GrenadeFrag:
		return "frag"
	case GrenadeConcussion:
		return "concussion"
	default:
		return "unknown"
	}
}

// MotorCommand is the full set of outputs one agent produces per tick:
// a desired destination, a desired aim direction, and discrete
// fire-and-forget action requests. The surrounding game applies it;
// the core never moves anything itself.
type MotorCommand struct {
	HasMove bool
	MoveTo  Vec2
	Speed   SpeedClass

	HasAim bool
	AimAt  Vec2

	Fire    bool
	FireDir Vec2

	ThrowGrenade  bool
	GrenadeKind   GrenadeKind
	GrenadeTarget Vec2

	Melee bool
}

// moveTo is a small helper for the common destination+speed case.
func (mc *MotorCommand) moveTo(p Vec2, speed SpeedClass) {
	mc.HasMove = true
	mc.MoveTo = p
	mc.Speed = speed
}

func (mc *MotorCommand) aimAt(p Vec2) {
	mc.HasAim = true
	mc.AimAt = p
}
