package values

// State is a plugin's position in its lifecycle.
//
//	Unloaded -> Opened -> Bound -> Loaded
//	                          \-> Failed
//
// Loaded and Failed are terminal for the life of the process.
type State int

const (
	StateUnloaded State = iota
	StateOpened
	StateBound
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateOpened:
		return "opened"
	case StateBound:
		return "bound"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanTransition reports whether moving from s to next is allowed.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateUnloaded:
		return next == StateOpened
	case StateOpened:
		return next == StateBound
	case StateBound:
		return next == StateLoaded || next == StateFailed
	default:
		return false
	}
}
