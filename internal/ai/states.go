package ai

// TacticalState is the behavioural state an agent is executing.
// Exactly one is active per agent; there is no terminal state —
// destruction removes the agent from the outside.
type TacticalState int

const (
	StateIdle TacticalState = iota
	StateCombat
	StateSeekingCover
	StateInCover
	StateFlanking
	StateSuppressed
	StateRetreating
	StatePursuing
	StateAssault
	StateSearching
	StateEvadingGrenade
	StateThrowingGrenade
	StateDodging
)

func (s TacticalState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCombat:
		return "combat"
	case StateSeekingCover:
		return "seeking_cover"
	case StateInCover:
		return "in_cover"
	case StateFlanking:
		return "flanking"
	case StateSuppressed:
		return "suppressed"
	case StateRetreating:
		return "retreating"
	case StatePursuing:
		return "pursuing"
	case StateAssault:
		return "assault"
	case StateSearching:
		return "searching"
	case StateEvadingGrenade:
		return "evading_grenade"
	case StateThrowingGrenade:
		return "throwing_grenade"
	case StateDodging:
		return "dodging"
	default:
		return "unknown"
	}
}
