package service

import (
	"context"

	"mir4tracker/events"
	"mir4tracker/models"
)

// AccountRepository defines the interface for account record storage
type AccountRepository interface {
	// GetByID retrieves an account by its identifier, returning nil when absent
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetAll returns up to limit accounts ordered by creation time
	GetAll(ctx context.Context, limit int) ([]*models.Account, error)

	// GetConfirmed returns accounts that are confirmed and carry a confirmation timestamp
	GetConfirmed(ctx context.Context) ([]*models.Account, error)

	// Create inserts a new account
	Create(ctx context.Context, account *models.Account) error

	// Update loads the account, applies mutate and persists the result atomically.
	// It returns nil when the account does not exist. An error from mutate aborts
	// the update and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error)

	// Delete removes an account and returns the number of deleted records
	Delete(ctx context.Context, id string) (int64, error)
}

// PriceRepository defines the interface for the singleton price table
type PriceRepository interface {
	// Get returns the stored price table, or nil when none has been provisioned
	Get(ctx context.Context) (*models.BossPrices, error)

	// Upsert stores the price table under its singleton key
	Upsert(ctx context.Context, prices *models.BossPrices) error
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// PriceService defines the interface for price table access
type PriceService interface {
	// GetPrices returns the price table, provisioning defaults on first access
	GetPrices(ctx context.Context) (*models.BossPrices, error)

	// UpdatePrices merges the supplied fields onto the price table
	UpdatePrices(ctx context.Context, patch models.PricesPatch) (*models.BossPrices, error)
}

// SweepService defines the interface for the confirmation retention policy
type SweepService interface {
	// ResetExpiredAccounts resets every account confirmed longer ago than the retention window
	ResetExpiredAccounts(ctx context.Context) (*SweepResult, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	// ListAccounts sweeps expired confirmations and returns valued accounts,
	// optionally filtered by a fuzzy name search
	ListAccounts(ctx context.Context, search string) ([]*models.ValuedAccount, error)

	// GetAccount returns a single valued account
	GetAccount(ctx context.Context, id string) (*models.ValuedAccount, error)

	// CreateAccount creates a new account
	CreateAccount(ctx context.Context, input *models.AccountInput) (*models.ValuedAccount, error)

	// UpdateAccount applies a partial update
	UpdateAccount(ctx context.Context, id string, patch *models.AccountPatch) (*models.ValuedAccount, error)

	// ConfirmAccount starts the retention window of an account
	ConfirmAccount(ctx context.Context, id string) (*models.ValuedAccount, error)

	// DeleteAccount removes an account
	DeleteAccount(ctx context.Context, id string) error

	// GetObjectives projects crafting and legendary objective progress for an account
	GetObjectives(ctx context.Context, id string) (*ObjectivesReport, error)
}

// StatsService defines the interface for aggregate statistics
type StatsService interface {
	// GetStatistics sums counters and valuations across all accounts
	GetStatistics(ctx context.Context) (*models.Statistics, error)
}
