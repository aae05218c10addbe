// Package uistate holds the small amount of state shared between screens:
// the selected history filter and which modals are open.
package uistate

import (
	"sync"

	"github.com/Veraticus/rotto/internal/model"
)

// Field names a piece of UI state.
type Field int

// Fields.
const (
	FieldFilter Field = iota
	FieldSearchModal
	FieldFilterModal
)

func (f Field) String() string {
	switch f {
	case FieldSearchModal:
		return "search_modal"
	case FieldFilterModal:
		return "filter_modal"
	default:
		return "filter"
	}
}

// Change describes one effective state mutation.
type Change struct {
	Field  Field
	Filter model.Filter
	Open   bool
}

// Snapshot is a copy of the whole state.
type Snapshot struct {
	Filter      model.Filter
	SearchModal bool
	FilterModal bool
}

// Store is safe for concurrent use. Setting a value equal to the current one
// does not notify subscribers.
type Store struct {
	subscribers map[int]func(Change)
	state       Snapshot
	nextID      int
	mu          sync.Mutex
}

// NewStore creates a store with the All filter and every modal closed.
func NewStore() *Store {
	return &Store{
		subscribers: make(map[int]func(Change)),
		state:       Snapshot{Filter: model.FilterAll},
	}
}

// Filter returns the selected history filter.
func (s *Store) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filter
}

// SetFilter selects a history filter. Invalid filters are ignored.
func (s *Store) SetFilter(filter model.Filter) {
	if !filter.Valid() {
		return
	}
	s.update(func(st *Snapshot) (Change, bool) {
		if st.Filter == filter {
			return Change{}, false
		}
		st.Filter = filter
		return Change{Field: FieldFilter, Filter: filter}, true
	})
}

// SearchModal reports whether the search modal is open.
func (s *Store) SearchModal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SearchModal
}

// SetSearchModal opens or closes the search modal.
func (s *Store) SetSearchModal(open bool) {
	s.update(func(st *Snapshot) (Change, bool) {
		if st.SearchModal == open {
			return Change{}, false
		}
		st.SearchModal = open
		return Change{Field: FieldSearchModal, Open: open}, true
	})
}

// FilterModal reports whether the filter modal is open.
func (s *Store) FilterModal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FilterModal
}

// SetFilterModal opens or closes the filter modal.
func (s *Store) SetFilterModal(open bool) {
	s.update(func(st *Snapshot) (Change, bool) {
		if st.FilterModal == open {
			return Change{}, false
		}
		st.FilterModal = open
		return Change{Field: FieldFilterModal, Open: open}, true
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every change and returns a func that removes it.
// fn runs on the goroutine that made the change, after the store is unlocked.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) update(apply func(*Snapshot) (Change, bool)) {
	s.mu.Lock()
	change, changed := apply(&s.state)
	var notify []func(Change)
	if changed {
		notify = make([]func(Change), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			notify = append(notify, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn(change)
	}
}
