package core

import (
	"sync"

	"kittycore/pkg/domain"
)

// EventLog keeps every event emitted by committed calls in emission order and
// fans them out to subscribers synchronously.
type EventLog struct {
	mu       sync.Mutex
	events   []domain.Event
	handlers map[int]func(domain.Event)
	nextID   int
}

// NewEventLog constructs an empty log.
func NewEventLog() *EventLog {
	return &EventLog{handlers: make(map[int]func(domain.Event))}
}

// Emit appends the event and delivers it to current subscribers.
func (l *EventLog) Emit(event domain.Event) {
	l.mu.Lock()
	l.events = append(l.events, event)
	handlers := make([]func(domain.Event), 0, len(l.handlers))
	for id := 0; id < l.nextID; id++ {
		if h, ok := l.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	l.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of everything emitted so far.
func (l *EventLog) Events() []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *EventLog) subscribe(fn func(domain.Event)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.handlers[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.handlers, id)
		l.mu.Unlock()
	}
}

// Subscribe registers a handler for events of type T and returns a function
// that removes it.
func Subscribe[T domain.Event](l *EventLog, fn func(T)) func() {
	return l.subscribe(func(ev domain.Event) {
		if typed, ok := ev.(T); ok {
			fn(typed)
		}
	})
}
