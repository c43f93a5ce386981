package mutation

import "fmt"

// State is the lifecycle of one optimistic edit: Applied, then exactly one of
// Confirmed or RolledBack.
type State int

const (
	StateApplied State = iota + 1
	StateConfirmed
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateApplied:
		return "applied"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Resolved() bool {
	return s == StateConfirmed || s == StateRolledBack
}
