package store

import (
	"sync"

	"github.com/dshills/mapbridge/internal/action"
)

// Dispatch sends one action through a pipeline stage.
type Dispatch func(a action.Action) error

// API is what middleware may use from the store.
type API struct {
	// Dispatch re-enters the full middleware chain.
	Dispatch Dispatch

	// State returns the current state.
	State func() any
}

// Middleware wraps the next pipeline stage.
type Middleware func(api API) func(next Dispatch) Dispatch

// Reducer computes the next state from the current one and an action.
type Reducer[S any] func(state S, a action.Action) S

// Store holds state of type S.
type Store[S any] struct {
	mu       sync.Mutex
	state    S
	reducer  Reducer[S]
	reducing bool

	subs   map[uint64]func()
	order  []uint64
	nextID uint64

	dispatch Dispatch
}

// New creates a store and composes its middleware. The first middleware is
// the outermost stage.
func New[S any](reducer Reducer[S], initial S, middleware ...Middleware) (*Store[S], error) {
	if reducer == nil {
		return nil, ErrNilReducer
	}

	s := &Store[S]{
		state:   initial,
		reducer: reducer,
		subs:    make(map[uint64]func()),
	}

	composed := Dispatch(func(action.Action) error { return ErrConstructing })
	api := API{
		Dispatch: func(a action.Action) error { return composed(a) },
		State:    func() any { return s.State() },
	}

	stages := make([]func(Dispatch) Dispatch, 0, len(middleware))
	for _, mw := range middleware {
		if mw == nil {
			continue
		}
		stages = append(stages, mw(api))
	}

	chain := Dispatch(s.reduce)
	for i := len(stages) - 1; i >= 0; i-- {
		chain = stages[i](chain)
	}
	guarded := func(a action.Action) error {
		if action.IsNil(a) {
			return ErrNilAction
		}
		return chain(a)
	}
	composed = guarded
	s.dispatch = guarded

	return s, nil
}

// Dispatch sends an action through the middleware chain to the reducer.
// Nil actions, including nil pointers, are rejected with ErrNilAction before
// any middleware sees them.
func (s *Store[S]) Dispatch(a action.Action) error {
	return s.dispatch(a)
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called after every reduction. The returned
// function removes the subscription; calling it more than once is harmless.
func (s *Store[S]) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; !ok {
			return
		}
		delete(s.subs, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// reduce is the innermost stage.
func (s *Store[S]) reduce(a action.Action) error {
	if action.IsNil(a) {
		return ErrNilAction
	}

	s.mu.Lock()
	if s.reducing {
		s.mu.Unlock()
		return ErrReducing
	}
	s.reducing = true
	current := s.state
	s.mu.Unlock()

	next := s.runReducer(current, a)

	s.mu.Lock()
	s.state = next
	s.reducing = false
	listeners := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// runReducer clears the reducing flag if the reducer panics so the store
// stays usable after the panic is recovered upstream.
func (s *Store[S]) runReducer(current S, a action.Action) S {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.reducing = false
			s.mu.Unlock()
			panic(r)
		}
	}()
	return s.reducer(current, a)
}
