package pipeline

// State is the pipeline's position in its lifecycle.
type State int

const (
	StateEmpty State = iota
	StatePrimed
	StateAdvancing
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePrimed:
		return "primed"
	case StateAdvancing:
		return "advancing"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}
