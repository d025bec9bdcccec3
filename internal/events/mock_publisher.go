package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records published events for assertions in tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	logger *slog.Logger

	Published []PublishedEvent
}

type PublishedEvent struct {
	Topic string
	Event interface{}
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(_ context.Context, topic string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, PublishedEvent{Topic: topic, Event: event})
	return nil
}

func (p *MockEventPublisher) Close() error { return nil }

// EventsFor returns the recorded events for one topic.
func (p *MockEventPublisher) EventsFor(topic string) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []PublishedEvent
	for _, e := range p.Published {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
