package notifications

import "time"

// EventType names a change pushed to connected dashboards
type EventType string

const (
	EventCapTableUpdated   EventType = "cap_table.updated"
	EventSimulationCreated EventType = "simulation.created"
	EventMilestoneUpdated  EventType = "milestone.updated"
	EventFinanceUpdated    EventType = "finance.updated"
	EventInvestorUpdated   EventType = "investor.updated"
)

// Event is a single message delivered to subscribers
type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher fans events out to whoever is listening.
type Publisher interface {
	Publish(eventType EventType, data interface{})
}

// Subscriber receives events in-process.
type Subscriber func(Event)

// Bus is an in-process Publisher that forwards every event to its subscribers.
type Bus struct {
	subscribers []Subscriber
}

func NewBus(subscribers ...Subscriber) *Bus {
	return &Bus{subscribers: subscribers}
}

// Subscribe adds s. Not safe to call concurrently with Publish; wire at startup.
func (b *Bus) Subscribe(s Subscriber) {
	b.subscribers = append(b.subscribers, s)
}

func (b *Bus) Publish(eventType EventType, data interface{}) {
	ev := Event{Type: eventType, Data: data, Timestamp: time.Now()}
	for _, s := range b.subscribers {
		s(ev)
	}
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(EventType, interface{}) {}
