package core

import "fmt"

// State represents the lifecycle state of an entity.
type State string

// State constants.
const (
	StateCreated   State = "CREATED"
	StateReady     State = "READY"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateError     State = "ERROR"
	StateStop      State = "STOP"
)

var validStates = map[State]bool{
	StateCreated:   true,
	StateReady:     true,
	StateRunning:   true,
	StateCompleted: true,
	StateError:     true,
	StateStop:      true,
}

// ParseState validates a state string.
func ParseState(s string) (State, error) {
	st := State(s)
	if !validStates[st] {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}

// IsTerminal reports whether no further transition is expected.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateError || s == StateStop
}

// Status is the status block shared by all entities.
type Status struct {
	State   State  `json:"state,omitempty" yaml:"state,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Outputs lists the entities produced by a run.
type Outputs struct {
	DataItems []EntityInfo `json:"dataitems,omitempty"`
	Artifacts []EntityInfo `json:"artifacts,omitempty"`
}

// RunStatus is the final status document reported by a runtime.
type RunStatus struct {
	State   State          `json:"state"`
	Message string         `json:"message,omitempty"`
	Outputs Outputs        `json:"outputs"`
	Results map[string]any `json:"results,omitempty"`
}

// FailedStatus builds the status reported when a run aborts.
func FailedStatus(err error) RunStatus {
	return RunStatus{State: StateError, Message: err.Error()}
}
