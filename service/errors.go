package service

import (
	"errors"

	"mir4tracker/events"
	"mir4tracker/models"

	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned when an identifier does not resolve to a record
var ErrNotFound = errors.New("account not found")

// ValidationError reports a request field that violates its constraints
type ValidationError = models.ValidationError

// publish forwards an event and logs delivery failures. Events are informational,
// so a failed publish never fails the operation that produced it.
func publish(publisher EventPublisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Warn("Failed to publish event")
	}
}
