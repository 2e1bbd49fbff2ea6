package application

import (
	"context"

	"mir4tracker/events"

	log "github.com/sirupsen/logrus"
)

// RegisterEventLogger subscribes an audit logger to every tracker event on the bus
func RegisterEventLogger(bus *events.Bus) {
	bus.Subscribe(events.EventTypeAccountCreated, logEvent)
	bus.Subscribe(events.EventTypeAccountUpdated, logEvent)
	bus.Subscribe(events.EventTypeAccountConfirmed, logEvent)
	bus.Subscribe(events.EventTypeAccountReset, logEvent)
	bus.Subscribe(events.EventTypeAccountDeleted, logEvent)
	bus.Subscribe(events.EventTypePricesUpdated, logEvent)
}

func logEvent(ctx context.Context, event events.Event) {
	fields := log.Fields{"eventType": event.Type()}

	switch e := event.(type) {
	case events.AccountCreatedEvent:
		fields["accountID"] = e.AccountID
		fields["name"] = e.Name
	case events.AccountUpdatedEvent:
		fields["accountID"] = e.AccountID
		fields["totalUSD"] = e.TotalUSD
	case events.AccountConfirmedEvent:
		fields["accountID"] = e.AccountID
		fields["confirmedAt"] = e.ConfirmedAt
		fields["totalUSD"] = e.TotalUSD
	case events.AccountResetEvent:
		fields["accountID"] = e.AccountID
		fields["confirmedAt"] = e.ConfirmedAt
	case events.AccountDeletedEvent:
		fields["accountID"] = e.AccountID
	case events.PricesUpdatedEvent:
		fields["fields"] = e.Fields
	}

	log.WithFields(fields).Debug("Tracker event")
}
