package state

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

const (
	ReaderMachineName = "reader"
	CycleMachineName  = "cycle"
)

var (
	ErrUnknownMachine = errors.New("unknown machine")
	ErrUnknownState   = errors.New("unknown state")
)

type machine struct {
	initial string
	states  map[string]func() State
}

var machines = map[string]machine{
	ReaderMachineName: {
		initial: PausedStateName,
		states: map[string]func() State{
			PlayingStateName: func() State { return NewPlaying() },
			PausedStateName:  func() State { return NewPaused() },
		},
	},
	CycleMachineName: {
		initial: AStateName,
		states: map[string]func() State{
			AStateName: func() State { return NewA() },
			BStateName: func() State { return NewB() },
			CStateName: func() State { return NewC() },
		},
	},
}

// Machines returns the names of all known machines, sorted.
func Machines() []string {
	return slices.Sorted(maps.Keys(machines))
}

// States returns the sorted state names of the given machine.
func States(machineName string) ([]string, error) {
	m, found := machines[machineName]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMachine, machineName)
	}

	return slices.Sorted(maps.Keys(m.states)), nil
}

// DefaultInitial returns the name of the state a machine starts in when no
// initial state is configured.
func DefaultInitial(machineName string) (string, error) {
	m, found := machines[machineName]
	if !found {
		return "", fmt.Errorf("%w: %q", ErrUnknownMachine, machineName)
	}

	return m.initial, nil
}

// New builds a fresh instance of the named state of the given machine.
func New(machineName, stateName string) (State, error) {
	m, found := machines[machineName]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMachine, machineName)
	}

	build, found := m.states[stateName]
	if !found {
		return nil, fmt.Errorf("%w: %q is not a state of machine %q", ErrUnknownState, stateName, machineName)
	}

	return build(), nil
}

type recorder struct {
	next State
}

func (r *recorder) TransitionTo(state State) {
	r.next = state
}

// Next returns the state s hands over to when it is handled. A state that does not
// transition is its own successor.
func Next(s State) State {
	r := &recorder{}
	s.Handle(r)
	if r.next == nil {
		return s
	}

	return r.next
}
