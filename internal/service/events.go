package service

import (
	"graphtools/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventProgress    EventType = "progress"
	EventRunFinished EventType = "run_finished"
)

// Event represents something that happened during a tool run
type Event struct {
	Type    EventType `json:"type"`
	RunID   string    `json:"run_id"`
	Tool    string    `json:"tool"`
	Payload any       `json:"payload,omitempty"`
}

// RunStarted is the payload of EventRunStarted
type RunStarted struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
}

// Progress is the payload of EventProgress
type Progress struct {
	Current uint64 `json:"current"`
	Total   uint64 `json:"total"`
}

// EventBus delivers events to subscribers. Handlers run synchronously on
// the publishing goroutine and must not block; channel subscribers that
// are not ready miss the event.
type EventBus struct {
	handlers    []func(Event)
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe adds a channel that receives events without blocking the publisher
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// SubscribeFunc adds a handler called for every event
func (eb *EventBus) SubscribeFunc(fn func(Event)) {
	eb.handlers = append(eb.handlers, fn)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	for _, fn := range eb.handlers {
		fn(event)
	}
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// FinishedRun returns the run carried by an EventRunFinished event
func (e Event) FinishedRun() (*domain.Run, bool) {
	run, ok := e.Payload.(*domain.Run)
	return run, ok && e.Type == EventRunFinished
}
