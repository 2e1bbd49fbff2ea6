package infrastructure

import (
	"fmt"

	"mir4tracker/events"
)

// TrackerEventStream is the JetStream stream that holds every tracker subject
const TrackerEventStream = "tracker_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

var subjectsByType = map[events.EventType]string{
	events.EventTypeAccountCreated:   "tracker.accounts.created",
	events.EventTypeAccountUpdated:   "tracker.accounts.updated",
	events.EventTypeAccountConfirmed: "tracker.accounts.confirmed",
	events.EventTypeAccountReset:     "tracker.accounts.reset",
	events.EventTypeAccountDeleted:   "tracker.accounts.deleted",
	events.EventTypePricesUpdated:    "tracker.prices.updated",
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("tracker.unknown.%s", event.Type())
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"tracker.accounts.created",
		"tracker.accounts.updated",
		"tracker.accounts.confirmed",
		"tracker.accounts.reset",
		"tracker.accounts.deleted",
		"tracker.prices.updated",
	}
}
