// Package inventory holds the two mutable item collections of the assistant: the pantry and
// the grocery list. Entries never persist with an amount at or below Epsilon.
package inventory

import "sync"

// Epsilon is the amount at or below which an entry counts as empty, absorbing the residue
// left by sums of decimal quantities.
const Epsilon = 1e-9

// Entry is the quantity of a single item held in one store.
type Entry struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Image  string  `json:"image,omitempty"`
}

// Item is a named entry, as returned by Snapshot.
type Item struct {
	Name string `json:"name"`
	Entry
}

// Store is an insertion-ordered mapping of item name to Entry. All methods are safe for
// concurrent use; each call is a single critical section.
type Store struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Upsert adds amount to an existing entry or creates a new one. The unit of an existing
// entry is replaced by unit even when they differ; the stored image is only replaced by a
// non-empty one. It reports false when the resulting entry would not have a positive amount,
// in which case nothing is stored.
func (s *Store) Upsert(item string, amount float64, unit, image string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[item]
	if !ok {
		if amount <= Epsilon {
			return Entry{}, false
		}
		e = &Entry{Amount: amount, Unit: unit, Image: image}
		s.entries[item] = e
		s.order = append(s.order, item)
		return *e, true
	}

	e.Amount += amount
	e.Unit = unit
	if image != "" {
		e.Image = image
	}
	if e.Amount <= Epsilon {
		s.delete(item)
		return Entry{}, false
	}
	return *e, true
}

// Decrement subtracts amount from item, deleting the entry once no more than Epsilon is left.
// It returns the unit the entry had before the call.
func (s *Store) Decrement(item string, amount float64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[item]
	if !ok {
		return "", false
	}
	unit := e.Unit
	e.Amount -= amount
	if e.Amount <= Epsilon {
		s.delete(item)
	}
	return unit, true
}

// Remove deletes item. Removing an absent item is a no-op that reports false.
func (s *Store) Remove(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[item]; !ok {
		return false
	}
	s.delete(item)
	return true
}

func (s *Store) Get(item string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[item]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Snapshot copies the store's contents in insertion order.
func (s *Store) Snapshot() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0, len(s.order))
	for _, name := range s.order {
		items = append(items, Item{Name: name, Entry: *s.entries[name]})
	}
	return items
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.entries = make(map[string]*Entry)
}

// delete must be called with s.mu held.
func (s *Store) delete(item string) {
	delete(s.entries, item)
	for i, name := range s.order {
		if name == item {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
