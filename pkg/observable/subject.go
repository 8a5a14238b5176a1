// Package observable provides a small publish-on-mutation subscription list.
package observable

import "sync"

// Subject fans a value out to every registered subscriber in registration order.
type Subject[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

// Publish delivers value to a snapshot of the current subscribers.
func (s *Subject[T]) Publish(value T) {
	s.mu.RLock()
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(value)
	}
}

// Len reports the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Subject[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}
