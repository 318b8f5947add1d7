package scheduler

import "fmt"

// State is the polling lifecycle state.
type State int

const (
	// StateIdle: no timer registered and no loop running.
	StateIdle State = iota
	// StateActive: a cycle is running or the next tick is scheduled.
	StateActive
	// StateSuspended: the page is hidden; nothing is scheduled until it
	// becomes visible again.
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a state transition.
type Event int

const (
	EventStart Event = iota
	EventTickVisible
	EventTickHidden
	EventVisible
	EventStop
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventTickVisible:
		return "tick_visible"
	case EventTickHidden:
		return "tick_hidden"
	case EventVisible:
		return "visible"
	case EventStop:
		return "stop"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStart: StateActive,
		EventStop:  StateIdle,
	},
	StateActive: {
		EventStart:       StateActive,
		EventTickVisible: StateActive,
		EventTickHidden:  StateSuspended,
		EventStop:        StateIdle,
	},
	StateSuspended: {
		EventStart:   StateActive,
		EventVisible: StateActive,
		EventStop:    StateIdle,
	},
}

// Transition returns the state reached from s on e. ok is false when the
// event is not valid in s; the state is then unchanged.
func Transition(s State, e Event) (next State, ok bool) {
	next, ok = transitions[s][e]
	if !ok {
		return s, false
	}
	return next, true
}
