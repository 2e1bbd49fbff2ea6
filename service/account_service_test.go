package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mir4tracker/events"
	"mir4tracker/models"
	"mir4tracker/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newMemoryAccountService wires an account service over an in-memory store with a fixed clock
func newMemoryAccountService(store *memstore.Store) *accountService {
	sweeps := newSweepService(store.Accounts(), nil, fixedClock)
	prices := NewPriceService(store.Prices(), nil)
	svc := NewAccountService(store.Accounts(), prices, sweeps, nil, 0).(*accountService)
	svc.now = fixedClock
	return svc
}

func TestAccountService_CreateAccount(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	mockPublisher := new(MockEventPublisher)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, new(MockSweepService), mockPublisher, 0)

	mockAccountRepo.On("Create", ctx, mock.AnythingOfType("*models.Account")).Return(nil)
	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		created, ok := e.(events.AccountCreatedEvent)
		return ok && created.Name == "Guerreiro"
	})).Return(nil)

	input := &models.AccountInput{
		Name:   "Guerreiro",
		Bosses: models.BossQuantities{Medio2: 10, Grande2: 5},
	}

	account, err := service.CreateAccount(ctx, input)

	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "Guerreiro", account.Name)
	assert.Equal(t, 0.90, account.TotalUSD)
	assert.False(t, account.Confirmed)
	assert.Nil(t, account.ConfirmedAt)

	_, err = models.ParseTimestamp(account.CreatedAt)
	assert.NoError(t, err)

	mockAccountRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAccountService_CreateAccount_RejectsNegativeCounter(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, new(MockSweepService), nil, 0)

	input := &models.AccountInput{
		Name:   "Guerreiro",
		Bosses: models.BossQuantities{Medio4: -1},
	}

	account, err := service.CreateAccount(ctx, input)

	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "bosses.medio4", validationErr.Field)
	assert.Nil(t, account)
	mockAccountRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccountService_CreateAccount_RepositoryError(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, new(MockSweepService), nil, 0)

	mockAccountRepo.On("Create", ctx, mock.Anything).Return(errors.New("duplicate key"))

	account, err := service.CreateAccount(ctx, &models.AccountInput{Name: "Arqueira"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create account")
	assert.Nil(t, account)
}

func TestAccountService_UpdateAccount_OnlySuppliedFieldsChange(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	service := newMemoryAccountService(store)

	created, err := service.CreateAccount(ctx, &models.AccountInput{
		Name:     "Mago",
		Bosses:   models.BossQuantities{Medio2: 10, Grande2: 5},
		SalaPico: "sala 7",
		Materials: models.Materials{
			Lunar: models.MaterialTiers{Raro: 40, Epico: 3},
		},
		Gold: 100,
	})
	require.NoError(t, err)

	gold := 250.75
	updated, err := service.UpdateAccount(ctx, created.ID, &models.AccountPatch{
		Gold:      &gold,
		Materials: map[string]map[string]int{"lunar": {"epico": 8}},
	})

	require.NoError(t, err)
	assert.Equal(t, 250.75, updated.Gold)
	assert.Equal(t, models.BossQuantities{Medio2: 10, Grande2: 5}, updated.Bosses)
	assert.Equal(t, "sala 7", updated.SalaPico)
	assert.Equal(t, "Mago", updated.Name)
	assert.Equal(t, models.MaterialTiers{Raro: 40, Epico: 8}, updated.Materials.Lunar)
	assert.Equal(t, 0.90, updated.TotalUSD)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestAccountService_UpdateAccount_MergesBossKeys(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	service := newMemoryAccountService(store)

	created, err := service.CreateAccount(ctx, &models.AccountInput{
		Name:   "Taoista",
		Bosses: models.BossQuantities{Medio2: 10, Grande2: 5},
	})
	require.NoError(t, err)

	updated, err := service.UpdateAccount(ctx, created.ID, &models.AccountPatch{
		Bosses: map[string]int{"grande2": 7},
	})

	require.NoError(t, err)
	assert.Equal(t, 10, updated.Bosses.Medio2)
	assert.Equal(t, 7, updated.Bosses.Grande2)
}

func TestAccountService_UpdateAccount_ConfirmedKeepsTimestampInvariant(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	service := newMemoryAccountService(store)

	created, err := service.CreateAccount(ctx, &models.AccountInput{Name: "Lanceiro"})
	require.NoError(t, err)

	confirmed := true
	updated, err := service.UpdateAccount(ctx, created.ID, &models.AccountPatch{Confirmed: &confirmed})
	require.NoError(t, err)
	assert.True(t, updated.Confirmed)
	require.NotNil(t, updated.ConfirmedAt)
	assert.Equal(t, models.FormatTimestamp(sweepNow), *updated.ConfirmedAt)

	unconfirmed := false
	updated, err = service.UpdateAccount(ctx, created.ID, &models.AccountPatch{Confirmed: &unconfirmed})
	require.NoError(t, err)
	assert.False(t, updated.Confirmed)
	assert.Nil(t, updated.ConfirmedAt)
}

func TestAccountService_UpdateAccount_RejectsUnknownBoss(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, new(MockSweepService), nil, 0)

	_, err := service.UpdateAccount(ctx, "a1", &models.AccountPatch{
		Bosses: map[string]int{"medio9": 1},
	})

	var validationErr *models.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	mockAccountRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountService_UpdateAccount_NotFound(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, new(MockSweepService), nil, 0)

	mockAccountRepo.On("Update", ctx, "missing", mock.Anything).Return(nil, nil)

	gold := 1.0
	account, err := service.UpdateAccount(ctx, "missing", &models.AccountPatch{Gold: &gold})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, account)
}

func TestAccountService_ConfirmAccount(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	service := newMemoryAccountService(store)

	created, err := service.CreateAccount(ctx, &models.AccountInput{Name: "Guerreiro"})
	require.NoError(t, err)

	confirmed, err := service.ConfirmAccount(ctx, created.ID)

	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	require.NotNil(t, confirmed.ConfirmedAt)

	at, err := models.ParseTimestamp(*confirmed.ConfirmedAt)
	require.NoError(t, err)
	assert.True(t, at.Equal(sweepNow))
}

func TestAccountService_ConfirmAccount_NotFound(t *testing.T) {
	ctx := context.Background()
	service := newMemoryAccountService(memstore.New())

	account, err := service.ConfirmAccount(ctx, "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, account)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	service := newMemoryAccountService(memstore.New())

	created, err := service.CreateAccount(ctx, &models.AccountInput{Name: "Arqueira"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteAccount(ctx, created.ID))

	_, err = service.GetAccount(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = service.DeleteAccount(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountService_ListAccounts_SweepsFirst(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	service := newMemoryAccountService(store)

	expired := confirmedAccount("old", sweepNow.Add(-31*24*time.Hour))
	require.NoError(t, store.Accounts().Create(ctx, expired))

	accounts, err := service.ListAccounts(ctx, "")

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.False(t, accounts[0].Confirmed)
	assert.Equal(t, models.BossQuantities{}, accounts[0].Bosses)
	assert.Equal(t, 0.0, accounts[0].TotalUSD)
}

func TestAccountService_ListAccounts_SweepError(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	mockSweeps := new(MockSweepService)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, mockSweeps, nil, 0)

	mockSweeps.On("ResetExpiredAccounts", ctx).Return(nil, errors.New("database unavailable"))

	accounts, err := service.ListAccounts(ctx, "")

	assert.Error(t, err)
	assert.Nil(t, accounts)
	mockAccountRepo.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything)
}

func TestAccountService_ListAccounts_UsesLimit(t *testing.T) {
	ctx := context.Background()

	mockAccountRepo := new(MockAccountRepository)
	mockSweeps := new(MockSweepService)
	prices := NewPriceService(memstore.New().Prices(), nil)
	service := NewAccountService(mockAccountRepo, prices, mockSweeps, nil, 25)

	mockSweeps.On("ResetExpiredAccounts", ctx).Return(&SweepResult{}, nil)
	mockAccountRepo.On("GetAll", ctx, 25).Return([]*models.Account{
		{ID: "a1", Name: "Um", Bosses: models.BossQuantities{Grande6: 2}},
	}, nil)

	accounts, err := service.ListAccounts(ctx, "")

	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, 0.90, accounts[0].TotalUSD)
	mockSweeps.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
}

func TestAccountService_ListAccounts_FuzzySearch(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	service := newMemoryAccountService(store)

	for _, name := range []string{"Guerreiro Principal", "Maga Secundaria", "Guerreiro Alt"} {
		_, err := service.CreateAccount(ctx, &models.AccountInput{Name: name})
		require.NoError(t, err)
	}

	accounts, err := service.ListAccounts(ctx, "GUERR")
	require.NoError(t, err)

	names := make([]string, len(accounts))
	for i, account := range accounts {
		names[i] = account.Name
	}
	assert.ElementsMatch(t, []string{"Guerreiro Principal", "Guerreiro Alt"}, names)

	all, err := service.ListAccounts(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAccountService_GetObjectives_NotFound(t *testing.T) {
	ctx := context.Background()
	service := newMemoryAccountService(memstore.New())

	report, err := service.GetObjectives(ctx, "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, report)
}

func TestAccountService_WrapsPriceErrors(t *testing.T) {
	ctx := context.Background()

	store := memstore.New()
	require.NoError(t, store.Accounts().Create(ctx, confirmedAccount("a1", sweepNow.Add(-time.Hour))))

	storageErr := errors.New("timeout")
	mockPriceRepo := new(MockPriceRepository)
	mockPriceRepo.On("Get", mock.Anything).Return(nil, storageErr)

	sweeps := newSweepService(store.Accounts(), nil, fixedClock)
	service := NewAccountService(store.Accounts(), NewPriceService(mockPriceRepo, nil), sweeps, nil, 0)

	_, err := service.GetAccount(ctx, "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.Contains(t, err.Error(), "failed to load prices for valuation")

	_, err = service.ListAccounts(ctx, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.Contains(t, err.Error(), "failed to load prices for valuation")
}
