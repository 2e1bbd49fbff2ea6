package service

import (
	"context"

	"mir4tracker/events"
	"mir4tracker/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAll(ctx context.Context, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetConfirmed(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// Update runs mutate against the account returned by the expectation, mirroring
// the read-modify-write of the real repositories
func (m *MockAccountRepository) Update(ctx context.Context, id string, mutate func(*models.Account) error) (*models.Account, error) {
	args := m.Called(ctx, id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	account := args.Get(0).(*models.Account)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	updated := *account
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockPriceRepository is a mock implementation of PriceRepository
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) Get(ctx context.Context) (*models.BossPrices, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BossPrices), args.Error(1)
}

func (m *MockPriceRepository) Upsert(ctx context.Context, prices *models.BossPrices) error {
	args := m.Called(ctx, prices)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockSweepService is a mock implementation of SweepService
type MockSweepService struct {
	mock.Mock
}

func (m *MockSweepService) ResetExpiredAccounts(ctx context.Context) (*SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SweepResult), args.Error(1)
}
