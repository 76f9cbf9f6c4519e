package state

import "log/slog"

const PausedStateName = "paused"

type Paused struct{}

func NewPaused() *Paused {
	return &Paused{}
}

func (s *Paused) Name() string {
	return PausedStateName
}

func (s *Paused) Handle(ctx StateContext) {
	slog.Debug("Reader paused, resuming playback", "state", s.Name())
	ctx.TransitionTo(NewPlaying())
}
