package models

import (
	"fmt"
	"time"
)

// timestampLayout matches the ISO-8601 form stored by earlier versions of the tracker
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Account represents one tracked MIR4 game account
type Account struct {
	ID             string         `json:"id" bson:"id"`
	Name           string         `json:"name" bson:"name"`
	Bosses         BossQuantities `json:"bosses" bson:"bosses"`
	SalaPico       string         `json:"sala_pico" bson:"sala_pico"`
	SpecialBosses  SpecialBosses  `json:"special_bosses" bson:"special_bosses"`
	Materials      Materials      `json:"materials" bson:"materials"`
	CraftResources CraftResources `json:"craft_resources" bson:"craft_resources"`
	Gold           float64        `json:"gold" bson:"gold"`
	Confirmed      bool           `json:"confirmed" bson:"confirmed"`
	ConfirmedAt    *string        `json:"confirmed_at" bson:"confirmed_at"` // Present only while confirmed
	CreatedAt      string         `json:"created_at" bson:"created_at"`
}

// ValuedAccount is an account together with its derived USD valuation
type ValuedAccount struct {
	Account
	TotalUSD float64 `json:"total_usd"`
}

// Confirm marks the account as confirmed at the given instant
func (a *Account) Confirm(at time.Time) {
	stamp := FormatTimestamp(at)
	a.Confirmed = true
	a.ConfirmedAt = &stamp
}

// ClearConfirmation returns the account to the unconfirmed state without touching counters
func (a *Account) ClearConfirmation() {
	a.Confirmed = false
	a.ConfirmedAt = nil
}

// ResetProgress clears confirmation and zeroes every counter group and the gold balance
func (a *Account) ResetProgress() {
	a.ClearConfirmation()
	a.Bosses = BossQuantities{}
	a.SpecialBosses = SpecialBosses{}
	a.Materials = Materials{}
	a.CraftResources = CraftResources{}
	a.Gold = 0
}

// ConfirmedTime parses ConfirmedAt. ok is false when the account carries no timestamp.
func (a *Account) ConfirmedTime() (t time.Time, ok bool, err error) {
	if !a.Confirmed || a.ConfirmedAt == nil {
		return time.Time{}, false, nil
	}
	t, err = ParseTimestamp(*a.ConfirmedAt)
	if err != nil {
		return time.Time{}, true, err
	}
	return t, true, nil
}

// FormatTimestamp renders t as an ISO-8601 UTC string with microsecond precision
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without an offset are taken as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
