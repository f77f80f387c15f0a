package store

import (
	"sync"
)

// Store coordinates concurrent dispatches against a single [State].
type Store struct {
	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New creates a store holding initial.
func New(initial State) *Store {
	return &Store{state: initial.Clone(), subs: make(map[int]func(State))}
}

// Dispatch applies a and then notifies subscribers with the resulting state.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state.Clone()
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(next.Clone())
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn to run after every dispatch. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]func(State))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}
