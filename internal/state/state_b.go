package state

import "log/slog"

const BStateName = "b"

type B struct{}

func NewB() *B {
	return &B{}
}

func (s *B) Name() string {
	return BStateName
}

func (s *B) Handle(ctx StateContext) {
	slog.Debug("State wants to change the state of the context", "state", s.Name())
	ctx.TransitionTo(NewC())
}
