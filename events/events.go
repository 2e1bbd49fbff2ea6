package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountCreated   EventType = "account_created"
	EventTypeAccountUpdated   EventType = "account_updated"
	EventTypeAccountConfirmed EventType = "account_confirmed"
	EventTypeAccountReset     EventType = "account_reset"
	EventTypeAccountDeleted   EventType = "account_deleted"
	EventTypePricesUpdated    EventType = "prices_updated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountCreatedEvent represents a newly tracked account
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// AccountUpdatedEvent represents a partial update applied to an account
type AccountUpdatedEvent struct {
	AccountID string  `json:"account_id"`
	TotalUSD  float64 `json:"total_usd"`
}

func (e AccountUpdatedEvent) Type() EventType {
	return EventTypeAccountUpdated
}

// AccountConfirmedEvent represents an account entering its retention window
type AccountConfirmedEvent struct {
	AccountID   string  `json:"account_id"`
	ConfirmedAt string  `json:"confirmed_at"`
	TotalUSD    float64 `json:"total_usd"`
}

func (e AccountConfirmedEvent) Type() EventType {
	return EventTypeAccountConfirmed
}

// AccountResetEvent represents an account whose retention window expired
type AccountResetEvent struct {
	AccountID   string `json:"account_id"`
	ConfirmedAt string `json:"confirmed_at"`
}

func (e AccountResetEvent) Type() EventType {
	return EventTypeAccountReset
}

// AccountDeletedEvent represents an account removal
type AccountDeletedEvent struct {
	AccountID string `json:"account_id"`
}

func (e AccountDeletedEvent) Type() EventType {
	return EventTypeAccountDeleted
}

// PricesUpdatedEvent represents a change to the price table
type PricesUpdatedEvent struct {
	Fields []string `json:"fields"`
}

func (e PricesUpdatedEvent) Type() EventType {
	return EventTypePricesUpdated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits the event with a background context so handlers outlive the request
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}
