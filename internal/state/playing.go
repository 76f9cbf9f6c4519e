package state

import "log/slog"

const PlayingStateName = "playing"

type Playing struct{}

func NewPlaying() *Playing {
	return &Playing{}
}

func (s *Playing) Name() string {
	return PlayingStateName
}

func (s *Playing) Handle(ctx StateContext) {
	slog.Debug("Reader playing, pausing playback", "state", s.Name())
	ctx.TransitionTo(NewPaused())
}
