package internal

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/soerenschneider/stately/internal/metrics"
	"github.com/soerenschneider/stately/internal/state"
	"go.uber.org/multierr"
)

var (
	ErrNilState  = errors.New("nil state supplied")
	ErrEmptyName = errors.New("empty machine name supplied")
)

// Transition describes a state change of a Holder. From is empty for the initial
// state installed by NewHolder.
type Transition struct {
	From string
	To   string
	At   time.Time
}

// Holder delegates every request to its current state, which in turn decides what
// the holder's next state is.
type Holder struct {
	name           string
	id             string
	state          state.State
	transitions    uint64
	lastTransition time.Time

	logger       *slog.Logger
	onTransition func(Transition)
}

type HolderOpts func(*Holder) error

func WithLogger(logger *slog.Logger) HolderOpts {
	return func(h *Holder) error {
		if logger == nil {
			return errors.New("nil logger supplied")
		}
		h.logger = logger
		return nil
	}
}

// WithTransitionCallback registers a function that is called after every
// transition, including the installation of the initial state.
func WithTransitionCallback(callback func(Transition)) HolderOpts {
	return func(h *Holder) error {
		if callback == nil {
			return errors.New("nil transition callback supplied")
		}
		h.onTransition = callback
		return nil
	}
}

func NewHolder(name string, initial state.State, opts ...HolderOpts) (*Holder, error) {
	if initial == nil {
		return nil, ErrNilState
	}

	if name == "" {
		return nil, ErrEmptyName
	}

	h := &Holder{
		name:   name,
		id:     uuid.NewString(),
		logger: slog.Default(),
	}

	var errs error
	for _, opt := range opts {
		if err := opt(h); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}

	// zero the gauge for every state of a known machine, leftovers of a previous
	// holder with the same name would otherwise show up as active
	if names, err := state.States(name); err == nil {
		for _, stateName := range names {
			metrics.State.WithLabelValues(h.name, stateName).Set(0)
		}
	}

	h.install(initial)
	h.logger.Info("Entered state", "machine", h.name, "id", h.id, "state", initial.Name())
	return h, nil
}

func (h *Holder) Name() string {
	return h.name
}

func (h *Holder) State() state.State {
	return h.state
}

func (h *Holder) Transitions() uint64 {
	return h.transitions
}

func (h *Holder) LastTransition() time.Time {
	return h.lastTransition
}

// Request hands the holder to its current state, which is expected to call
// TransitionTo before returning.
func (h *Holder) Request() {
	metrics.Requests.WithLabelValues(h.name).Inc()
	h.logger.Debug("Request", "machine", h.name, "id", h.id, "state", h.state.Name())
	h.state.Handle(h)
}

func (h *Holder) TransitionTo(newState state.State) {
	if newState == nil {
		panic("stately: transition to nil state")
	}

	old := h.state.Name()
	h.transitions++
	h.install(newState)
	metrics.Transitions.WithLabelValues(h.name, old, newState.Name()).Inc()
	h.logger.Info("State change", "machine", h.name, "id", h.id, "old", old, "new", newState.Name())
}

func (h *Holder) install(newState state.State) {
	var from string
	if h.state != nil {
		from = h.state.Name()
	}

	metrics.StateChangeTimestamp.WithLabelValues(h.name).SetToCurrentTime()
	if from != "" {
		metrics.State.WithLabelValues(h.name, from).Set(0)
	}
	metrics.State.WithLabelValues(h.name, newState.Name()).Set(1)

	h.state = newState
	h.lastTransition = time.Now()

	if h.onTransition != nil {
		h.onTransition(Transition{From: from, To: newState.Name(), At: h.lastTransition})
	}
}
