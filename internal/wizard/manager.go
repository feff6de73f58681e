package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/booking-wizard/pkg/logging"
)

// Recorder observes wizard activity. *metrics.WizardMetrics satisfies it.
type Recorder interface {
	ObserveAction(kind, outcome string)
	ObserveStep(step string)
	ObserveSubmission(service string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveAction(string, string) {}
func (noopRecorder) ObserveStep(string)           {}
func (noopRecorder) ObserveSubmission(string)     {}

// Manager runs the load, apply, save cycle for each session. Actions for
// the same session are applied one at a time.
type Manager struct {
	machine   *Machine
	store     Store
	submitter Submitter
	recorder  Recorder
	logger    *logging.Logger
	locks     *keyedMutex
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// WithSubmitter replaces the default log submitter.
func WithSubmitter(s Submitter) ManagerOption {
	return func(m *Manager) {
		if s != nil {
			m.submitter = s
		}
	}
}

// NewManager wires a Manager. A nil store falls back to a MemoryStore.
func NewManager(machine *Machine, store Store, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	if machine == nil {
		machine = NewMachine(nil, nil)
	}
	if store == nil {
		store = NewMemoryStore(0)
	}
	m := &Manager{
		machine:   machine,
		store:     store,
		submitter: NewLogSubmitter(logger),
		recorder:  noopRecorder{},
		logger:    logger,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Machine exposes the reducer, mainly for rendering "today".
func (m *Manager) Machine() *Machine {
	return m.machine
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Current returns the session's state, or a fresh wizard if none is stored.
func (m *Manager) Current(ctx context.Context, sessionID string) (State, error) {
	st, ok, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return m.machine.Start(), nil
	}
	return st, nil
}

// Dispatch applies a to the session. The returned state is what the
// visitor should see next: the new state on success, the unchanged one on
// rejection.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, a Action) (State, error) {
	unlock := m.locks.Lock(sessionID)
	defer unlock()

	current, err := m.Current(ctx, sessionID)
	if err != nil {
		m.recorder.ObserveAction(a.Kind(), "error")
		return State{}, err
	}

	next, err := m.machine.Apply(current, a)
	if err != nil {
		m.recorder.ObserveAction(a.Kind(), outcomeFor(err))
		m.logger.Debug("wizard: action rejected",
			"session_id", sessionID,
			"action", a.Kind(),
			"step", current.Step.String(),
			"error", err,
		)
		return current, err
	}

	if err := m.store.Save(ctx, sessionID, next); err != nil {
		m.recorder.ObserveAction(a.Kind(), "error")
		return current, err
	}

	// Bookings are handed off only after the confirmed state is stored.
	if _, ok := a.(Submit); ok {
		sub := Submission{
			Reference:   uuid.NewString(),
			SessionID:   sessionID,
			Service:     *next.Draft.Service,
			Date:        *next.Draft.Date,
			Time:        *next.Draft.Time,
			Name:        next.Draft.Name,
			Email:       next.Draft.Email,
			Phone:       next.Draft.Phone,
			SubmittedAt: time.Now().UTC(),
		}
		if err := m.submitter.Submit(ctx, sub); err != nil {
			m.recorder.ObserveAction(a.Kind(), "error")
			if rerr := m.store.Save(ctx, sessionID, current); rerr != nil {
				m.logger.Error("wizard: failed to restore session after submit error",
					"session_id", sessionID,
					"error", rerr,
				)
			}
			return current, fmt.Errorf("wizard: submit: %w", err)
		}
		m.recorder.ObserveSubmission(sub.Service.Name)
	}

	m.recorder.ObserveAction(a.Kind(), "ok")
	if next.Step != current.Step {
		m.recorder.ObserveStep(next.Step.String())
		m.logger.Info("wizard: step changed",
			"session_id", sessionID,
			"action", a.Kind(),
			"from", current.Step.String(),
			"to", next.Step.String(),
		)
	}
	return next, nil
}

func outcomeFor(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid_contact"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	case errors.Is(err, ErrStepNotActive):
		return "wrong_step"
	default:
		return "rejected"
	}
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
