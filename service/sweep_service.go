package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"mir4tracker/events"
	"mir4tracker/models"
)

const (
	// ConfirmationRetention is how long a confirmed account keeps its progress
	ConfirmationRetention = 30 * 24 * time.Hour
	// SweepInterval is the period of the background expiry sweep
	SweepInterval = 6 * time.Hour
)

// errNotExpired aborts a reset when the account changed after it was selected
var errNotExpired = errors.New("account no longer expired")

// SweepResult summarizes one pass of the expiry sweep
type SweepResult struct {
	Checked int `json:"checked"`
	Reset   int `json:"reset"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// sweepService implements the SweepService interface
type sweepService struct {
	accountRepo    AccountRepository
	eventPublisher EventPublisher
	now            func() time.Time
}

// NewSweepService creates a new sweep service
func NewSweepService(accountRepo AccountRepository, eventPublisher EventPublisher) SweepService {
	return newSweepService(accountRepo, eventPublisher, time.Now)
}

func newSweepService(accountRepo AccountRepository, eventPublisher EventPublisher, now func() time.Time) *sweepService {
	return &sweepService{
		accountRepo:    accountRepo,
		eventPublisher: eventPublisher,
		now:            now,
	}
}

// ResetExpiredAccounts resets every account whose confirmation is strictly older than
// the retention window. Accounts with unparseable timestamps are skipped, and a
// storage failure on one account does not stop the sweep.
func (s *sweepService) ResetExpiredAccounts(ctx context.Context) (*SweepResult, error) {
	accounts, err := s.accountRepo.GetConfirmed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmed accounts: %w", err)
	}

	cutoff := s.now().UTC().Add(-ConfirmationRetention)
	result := &SweepResult{}

	for _, account := range accounts {
		result.Checked++

		confirmedAt, ok, err := account.ConfirmedTime()
		if err != nil {
			log.WithFields(log.Fields{
				"accountID":   account.ID,
				"confirmedAt": *account.ConfirmedAt,
				"error":       err,
			}).Warn("Skipping account with unparseable confirmation timestamp")
			result.Skipped++
			continue
		}
		if !ok || !confirmedAt.Before(cutoff) {
			continue
		}

		reset, err := s.accountRepo.Update(ctx, account.ID, func(current *models.Account) error {
			// re-check against the stored record
			t, ok, err := current.ConfirmedTime()
			if err != nil || !ok || !t.Before(cutoff) {
				return errNotExpired
			}
			current.ResetProgress()
			return nil
		})
		if errors.Is(err, errNotExpired) || (err == nil && reset == nil) {
			continue
		}
		if err != nil {
			log.WithFields(log.Fields{
				"accountID": account.ID,
				"error":     err,
			}).Error("Failed to reset expired account")
			result.Failed++
			continue
		}

		result.Reset++
		log.WithFields(log.Fields{
			"accountID":   account.ID,
			"name":        account.Name,
			"confirmedAt": *account.ConfirmedAt,
		}).Info("Reset expired account confirmation")

		publish(s.eventPublisher, events.AccountResetEvent{
			AccountID:   account.ID,
			ConfirmedAt: *account.ConfirmedAt,
		})
	}

	if result.Reset > 0 || result.Skipped > 0 || result.Failed > 0 {
		log.WithFields(log.Fields{
			"checked": result.Checked,
			"reset":   result.Reset,
			"skipped": result.Skipped,
			"failed":  result.Failed,
		}).Info("Expiry sweep completed")
	}

	return result, nil
}
