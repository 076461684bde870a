// Package pubsub provides the two broadcast shapes the controller exposes:
//   - [Latest] : holds a current value and replays it to every new subscriber; slow subscribers only ever
//     see the most recent value
//   - [Multicast] : delivers each value at most once to the subscribers present when it is published,
//     with no replay
//
// Publishing never blocks.
package pubsub

import "sync"

// Latest is a conflating, replaying broadcast of a current value.
type Latest[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewLatest creates a broadcast holding initial.
func NewLatest[T any](initial T) *Latest[T] {
	return &Latest[T]{value: initial, subs: make(map[int]chan T)}
}

// Publish replaces the current value and offers it to every subscriber, displacing any value a subscriber
// has not read yet.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.value = v
	for _, ch := range l.subs {
		offerLatest(ch, v)
	}
}

// Value returns the current value.
func (l *Latest[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Subscribe returns a channel that first yields the current value and then every later value, conflated.
// The returned func unsubscribes and closes the channel.
func (l *Latest[T]) Subscribe() (<-chan T, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan T, 1)
	ch <- l.value
	if l.closed {
		close(ch)
		return ch, func() {}
	}

	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	return ch, func() { l.unsubscribe(id) }
}

func (l *Latest[T]) unsubscribe(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ch, ok := l.subs[id]; ok {
		delete(l.subs, id)
		close(ch)
	}
}

// Close closes every subscriber channel. Later publishes are dropped.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

// offerLatest replaces whatever is buffered in ch with v. Callers hold the lock, so they are the only sender.
func offerLatest[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// DefaultBuffer is the per-subscriber buffer of a [Multicast].
const DefaultBuffer = 16

// Multicast fans values out to current subscribers without replay. A subscriber whose buffer is full misses
// the value.
type Multicast[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	buffer int
	closed bool
}

// NewMulticast creates a multicast with the given per-subscriber buffer; non-positive uses [DefaultBuffer].
func NewMulticast[T any](buffer int) *Multicast[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Multicast[T]{subs: make(map[int]chan T), buffer: buffer}
}

// Publish delivers v to each subscriber that has room and reports how many received it.
func (m *Multicast[T]) Publish(v T) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0
	}
	delivered := 0
	for _, ch := range m.subs {
		select {
		case ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribe returns a channel receiving values published from now on.
func (m *Multicast[T]) Subscribe() (<-chan T, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan T, m.buffer)
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	return ch, func() { m.unsubscribe(id) }
}

func (m *Multicast[T]) unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(ch)
	}
}

// Close closes every subscriber channel.
func (m *Multicast[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}
