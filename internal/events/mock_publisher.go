package events

import (
	"context"
	"sync"
)

// PublishedEvent records one Publish call for assertions.
type PublishedEvent struct {
	Topic string
	Event interface{}
}

// MockEventPublisher records published events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	// PublishErr, when set, is returned from Publish.
	PublishErr error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, event interface{}) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *MockEventPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOn filters published events by topic.
func (m *MockEventPublisher) EventsOn(topic string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range m.Events() {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
