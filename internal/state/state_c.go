package state

import "log/slog"

const CStateName = "c"

type C struct{}

func NewC() *C {
	return &C{}
}

func (s *C) Name() string {
	return CStateName
}

func (s *C) Handle(ctx StateContext) {
	slog.Debug("State wants to change the state of the context", "state", s.Name())
	ctx.TransitionTo(NewA())
}
