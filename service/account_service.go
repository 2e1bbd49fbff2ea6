package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	log "github.com/sirupsen/logrus"

	"mir4tracker/events"
	"mir4tracker/models"
)

// DefaultAccountListLimit caps a single list read
const DefaultAccountListLimit = 1000

// accountService implements the AccountService interface
type accountService struct {
	accountRepo    AccountRepository
	priceService   PriceService
	sweepService   SweepService
	eventPublisher EventPublisher
	listLimit      int
	now            func() time.Time
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo AccountRepository,
	priceService PriceService,
	sweepService SweepService,
	eventPublisher EventPublisher,
	listLimit int,
) AccountService {
	if listLimit <= 0 {
		listLimit = DefaultAccountListLimit
	}
	return &accountService{
		accountRepo:    accountRepo,
		priceService:   priceService,
		sweepService:   sweepService,
		eventPublisher: eventPublisher,
		listLimit:      listLimit,
		now:            time.Now,
	}
}

// accountNames implements fuzzy.Source over account names
type accountNames []*models.Account

func (a accountNames) Len() int {
	return len(a)
}

func (a accountNames) String(i int) string {
	return strings.ToLower(a[i].Name)
}

// ListAccounts runs the expiry sweep before reading so callers always see post-sweep state
func (s *accountService) ListAccounts(ctx context.Context, search string) ([]*models.ValuedAccount, error) {
	if _, err := s.sweepService.ResetExpiredAccounts(ctx); err != nil {
		return nil, fmt.Errorf("failed to sweep expired accounts: %w", err)
	}

	accounts, err := s.accountRepo.GetAll(ctx, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	if query := strings.ToLower(strings.TrimSpace(search)); query != "" {
		matches := fuzzy.FindFrom(query, accountNames(accounts))
		filtered := make([]*models.Account, len(matches))
		for i, match := range matches {
			filtered[i] = accounts[match.Index]
		}
		accounts = filtered
	}

	prices, err := s.priceService.GetPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for valuation: %w", err)
	}

	result := make([]*models.ValuedAccount, len(accounts))
	for i, account := range accounts {
		result[i] = valued(account, prices)
	}
	return result, nil
}

// GetAccount returns a single valued account
func (s *accountService) GetAccount(ctx context.Context, id string) (*models.ValuedAccount, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return s.value(ctx, account)
}

// CreateAccount validates the input and stores a new unconfirmed account
func (s *accountService) CreateAccount(ctx context.Context, input *models.AccountInput) (*models.ValuedAccount, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:             uuid.NewString(),
		Name:           input.Name,
		Bosses:         input.Bosses,
		SalaPico:       input.SalaPico,
		SpecialBosses:  input.SpecialBosses,
		Materials:      input.Materials,
		CraftResources: input.CraftResources,
		Gold:           input.Gold,
		CreatedAt:      models.FormatTimestamp(s.now()),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"name":      account.Name,
	}).Info("Created account")
	publish(s.eventPublisher, events.AccountCreatedEvent{AccountID: account.ID, Name: account.Name})

	return s.value(ctx, account)
}

// UpdateAccount merges the patch onto the stored account
func (s *accountService) UpdateAccount(ctx context.Context, id string, patch *models.AccountPatch) (*models.ValuedAccount, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var newlyConfirmed bool
	account, err := s.accountRepo.Update(ctx, id, func(a *models.Account) error {
		wasConfirmed := a.Confirmed
		patch.ApplyTo(a, func() string { return models.FormatTimestamp(s.now()) })
		newlyConfirmed = !wasConfirmed && a.Confirmed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	result, err := s.value(ctx, account)
	if err != nil {
		return nil, err
	}

	publish(s.eventPublisher, events.AccountUpdatedEvent{AccountID: id, TotalUSD: result.TotalUSD})
	if newlyConfirmed {
		s.publishConfirmed(result)
	}
	return result, nil
}

// ConfirmAccount stamps the account as confirmed now
func (s *accountService) ConfirmAccount(ctx context.Context, id string) (*models.ValuedAccount, error) {
	account, err := s.accountRepo.Update(ctx, id, func(a *models.Account) error {
		a.Confirm(s.now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	result, err := s.value(ctx, account)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":   id,
		"confirmedAt": *account.ConfirmedAt,
	}).Info("Confirmed account")
	s.publishConfirmed(result)
	return result, nil
}

// DeleteAccount removes an account
func (s *accountService) DeleteAccount(ctx context.Context, id string) error {
	deleted, err := s.accountRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	log.WithField("accountID", id).Info("Deleted account")
	publish(s.eventPublisher, events.AccountDeletedEvent{AccountID: id})
	return nil
}

func (s *accountService) value(ctx context.Context, account *models.Account) (*models.ValuedAccount, error) {
	prices, err := s.priceService.GetPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for valuation: %w", err)
	}
	return valued(account, prices), nil
}

func (s *accountService) publishConfirmed(account *models.ValuedAccount) {
	if account.ConfirmedAt == nil {
		return
	}
	publish(s.eventPublisher, events.AccountConfirmedEvent{
		AccountID:   account.ID,
		ConfirmedAt: *account.ConfirmedAt,
		TotalUSD:    account.TotalUSD,
	})
}
