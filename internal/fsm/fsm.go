// Package fsm defines the submission lifecycle transition table.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "idle"
	StateInFlight  State = "in_flight"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

const (
	EventSubmit  Event = "submit"
	EventSucceed Event = "succeed"
	EventFail    Event = "fail"
)

// Transition returns the next state for event, or the current state and an error when the
// edge does not exist.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle, StateSucceeded, StateFailed:
		switch event {
		case EventSubmit:
			return StateInFlight, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateInFlight:
		switch event {
		case EventSucceed:
			return StateSucceeded, nil
		case EventFail:
			return StateFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// Editable reports whether a new submission may start from state.
func Editable(state State) bool {
	return state == StateIdle || state == StateSucceeded || state == StateFailed
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
