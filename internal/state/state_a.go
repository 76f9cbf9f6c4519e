package state

import "log/slog"

const AStateName = "a"

// A is the entry state of the cycle machine: A, B, C, then back to A.
type A struct{}

func NewA() *A {
	return &A{}
}

func (s *A) Name() string {
	return AStateName
}

func (s *A) Handle(ctx StateContext) {
	slog.Debug("State wants to change the state of the context", "state", s.Name())
	ctx.TransitionTo(NewB())
}
