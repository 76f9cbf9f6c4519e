package state

type State interface {
	Name() string

	Handle(ctx StateContext)
}

// StateContext is handed to a State for the duration of a single Handle call.
// States must not keep a reference to it.
type StateContext interface {
	TransitionTo(state State)
}
