package slot

import "sync"

// Occupant is anything a Slot can hold: comparable so the slot can tell
// occupants apart, terminable so evictions can be completed.
type Occupant interface {
	comparable
	Terminate()
}

// Slot is a mutex-guarded holder for at most one occupant.
// The zero value is an empty, open slot.
type Slot[T Occupant] struct {
	mu     sync.Mutex
	cur    T
	closed bool
}

// New returns an empty slot.
func New[T Occupant]() *Slot[T] {
	return &Slot[T]{}
}

// Replace stores next and returns the previous occupant (the zero value when
// empty). The caller owns the returned value and must terminate it.
func (s *Slot[T]) Replace(next T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.closed {
		return zero, ErrClosed
	}
	old := s.cur
	s.cur = next
	return old, nil
}

// Take empties the slot and returns what it held. Equivalent to Replace(zero).
func (s *Slot[T]) Take() (T, error) {
	var zero T
	return s.Replace(zero)
}

// TakeIf empties the slot only when it still holds want. It reports whether
// the caller now owns want.
func (s *Slot[T]) TakeIf(want T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.closed {
		return false, ErrClosed
	}
	if want == zero || s.cur != want {
		return false, nil
	}
	s.cur = zero
	return true, nil
}

// Evict takes the current occupant and terminates it outside the lock.
// It reports whether anything was evicted.
func (s *Slot[T]) Evict() (bool, error) {
	old, err := s.Take()
	if err != nil {
		return false, err
	}
	var zero T
	if old == zero {
		return false, nil
	}
	old.Terminate()
	return true, nil
}

// Occupied reports whether the slot currently holds an occupant.
func (s *Slot[T]) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	return s.cur != zero
}

// Close shuts the slot and terminates its occupant, if any. Closing twice is a no-op.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	var zero T
	old := s.cur
	s.cur = zero
	s.closed = true
	s.mu.Unlock()

	if old != zero {
		old.Terminate()
	}
}
