// Package session owns one editor's tree. All changes flow through
// Dispatch: the reducer runs synchronously, and the side effects that hang
// off a committed action (position reconciliation, audit observers) run
// strictly after the transition, so no action can trigger another action
// from inside the reducer.
package session

import (
	"context"
	"sync"
	"time"

	"coursetree-cli/internal/debug"
	"coursetree-cli/internal/model"
	"coursetree-cli/internal/mutate"
	"coursetree-cli/internal/reconcile"
	"coursetree-cli/internal/store"
)

const persistTimeout = 10 * time.Second

// Gateway is the slice of the store the session needs. Swappable in tests.
type Gateway interface {
	ApplyUpdates(ctx context.Context, updates []reconcile.ItemUpdate) error
	AppendEvent(ctx context.Context, typ, entityID string, payload any) error
}

// Observer is notified after every committed action, with the state the
// action produced. Observers must not call Dispatch from the callback.
type Observer func(action model.Action, st model.TreeState)

type Session struct {
	gateway   Gateway
	outlineID string

	mu    sync.Mutex
	state model.TreeState

	observers []Observer

	// onPersistError receives failures from the fire-and-forget persistence
	// path. The in-memory tree is never rolled back on failure: the local
	// optimistic state stays the source of truth and the next successful
	// reconciliation re-syncs storage to match it.
	onPersistError func(error)

	wg sync.WaitGroup
}

func New(gateway Gateway, outlineID string, initial []model.TreeItem) *Session {
	return &Session{
		gateway:        gateway,
		outlineID:      outlineID,
		state:          model.TreeState{Data: initial},
		onPersistError: func(error) {},
	}
}

// OnPersistError installs the persistence-failure handler (e.g. a TUI
// toast). Must be called before the first Dispatch.
func (s *Session) OnPersistError(fn func(error)) {
	if fn != nil {
		s.onPersistError = fn
	}
}

// Observe registers an audit observer. Must be called before the first
// Dispatch.
func (s *Session) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// State returns the latest committed state.
func (s *Session) State() model.TreeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies one action and returns the committed state. Structural
// actions additionally kick off an asynchronous reconcile-and-persist; the
// caller is never blocked on storage, and a storage failure surfaces only
// through OnPersistError.
func (s *Session) Dispatch(action model.Action) model.TreeState {
	s.mu.Lock()
	s.state = mutate.Reduce(s.state, action)
	committed := s.state
	s.mu.Unlock()

	for _, o := range s.observers {
		o(action, committed)
	}

	if model.IsStructural(action) {
		plan := reconcile.Plan(s.outlineID, committed.Data)
		if len(plan) == 0 {
			return committed
		}
		s.wg.Add(1)
		go s.persist(action, plan)
	}
	return committed
}

func (s *Session) persist(action model.Action, plan []reconcile.ItemUpdate) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := s.gateway.ApplyUpdates(ctx, plan); err != nil {
		debug.Log("session: persist after %s failed: %v", action.Name(), err)
		s.onPersistError(err)
		return
	}
	if err := s.gateway.AppendEvent(ctx, "outline."+action.Name(), s.outlineID, action); err != nil {
		debug.Log("session: event append after %s failed: %v", action.Name(), err)
	}
}

// Flush waits for in-flight persistence work. Short-lived callers (the
// CLI) flush before exiting; the TUI flushes on quit.
func (s *Session) Flush() {
	s.wg.Wait()
}

// Hydrate builds a session from a workspace store.
func Hydrate(ctx context.Context, st store.Store) (*Session, store.Outline, error) {
	data, outline, err := st.Hydrate(ctx)
	if err != nil {
		return nil, store.Outline{}, err
	}
	return New(st, outline.ResourceID, data), outline, nil
}
