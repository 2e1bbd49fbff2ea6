package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mir4tracker/events"
	"mir4tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPriceService_GetPrices_ProvisionsDefaults(t *testing.T) {
	ctx := context.Background()

	mockPriceRepo := new(MockPriceRepository)
	service := NewPriceService(mockPriceRepo, nil)

	mockPriceRepo.On("Get", ctx).Return(nil, nil).Once()
	mockPriceRepo.On("Upsert", ctx, models.DefaultBossPrices()).Return(nil).Once()

	prices, err := service.GetPrices(ctx)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultBossPrices(), prices)
	assert.Equal(t, 0.045, prices.Medio2Price)
	assert.Equal(t, 0.0, prices.Medio7Price)
	mockPriceRepo.AssertExpectations(t)
}

func TestPriceService_GetPrices_ServesFromCache(t *testing.T) {
	ctx := context.Background()

	mockPriceRepo := new(MockPriceRepository)
	service := NewPriceService(mockPriceRepo, nil).(*priceService)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return clock }

	stored := models.DefaultBossPrices()
	stored.Medio7Price = 0.5
	mockPriceRepo.On("Get", ctx).Return(stored, nil)

	first, err := service.GetPrices(ctx)
	require.NoError(t, err)
	first.Medio7Price = 99

	second, err := service.GetPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, second.Medio7Price)
	mockPriceRepo.AssertNumberOfCalls(t, "Get", 1)

	clock = clock.Add(PriceCacheTTL + time.Second)
	_, err = service.GetPrices(ctx)
	require.NoError(t, err)
	mockPriceRepo.AssertNumberOfCalls(t, "Get", 2)
}

func TestPriceService_GetPrices_RepositoryError(t *testing.T) {
	ctx := context.Background()

	mockPriceRepo := new(MockPriceRepository)
	service := NewPriceService(mockPriceRepo, nil)

	mockPriceRepo.On("Get", ctx).Return(nil, errors.New("timeout"))

	prices, err := service.GetPrices(ctx)

	assert.Error(t, err)
	assert.Nil(t, prices)
}

func TestPriceService_UpdatePrices_MergesSuppliedFields(t *testing.T) {
	ctx := context.Background()

	mockPriceRepo := new(MockPriceRepository)
	mockPublisher := new(MockEventPublisher)
	service := NewPriceService(mockPriceRepo, mockPublisher)

	mockPriceRepo.On("Get", ctx).Return(models.DefaultBossPrices(), nil)
	mockPriceRepo.On("Upsert", ctx, mock.MatchedBy(func(p *models.BossPrices) bool {
		return p.Medio2Price == 0.05 && p.XamaPrice == 1.2 && p.Grande2Price == 0.09
	})).Return(nil)
	mockPublisher.On("Publish", events.PricesUpdatedEvent{
		Fields: []string{"medio2_price", "xama_price"},
	}).Return(nil)

	prices, err := service.UpdatePrices(ctx, models.PricesPatch{
		"xama_price":   1.2,
		"medio2_price": 0.05,
	})

	require.NoError(t, err)
	assert.Equal(t, 0.05, prices.Medio2Price)
	assert.Equal(t, 1.2, prices.XamaPrice)
	assert.Equal(t, 0.09, prices.Grande2Price)
	assert.Equal(t, models.DefaultPricesID, prices.ID)

	cached, err := service.GetPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, prices, cached)

	mockPriceRepo.AssertNumberOfCalls(t, "Get", 1)
	mockPriceRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestPriceService_UpdatePrices_StartsFromDefaultsWhenAbsent(t *testing.T) {
	ctx := context.Background()

	mockPriceRepo := new(MockPriceRepository)
	service := NewPriceService(mockPriceRepo, nil)

	mockPriceRepo.On("Get", ctx).Return(nil, nil)
	mockPriceRepo.On("Upsert", ctx, mock.Anything).Return(nil)

	prices, err := service.UpdatePrices(ctx, models.PricesPatch{"grande8_price": 2})

	require.NoError(t, err)
	assert.Equal(t, 2.0, prices.Grande8Price)
	assert.Equal(t, 0.45, prices.Grande6Price)
}

func TestPriceService_UpdatePrices_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		patch models.PricesPatch
		field string
	}{
		{name: "negative price", patch: models.PricesPatch{"medio2_price": -0.01}, field: "medio2_price"},
		{name: "unknown field", patch: models.PricesPatch{"medio9_price": 1}, field: "medio9_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPriceRepo := new(MockPriceRepository)
			service := NewPriceService(mockPriceRepo, nil)

			prices, err := service.UpdatePrices(ctx, tt.patch)

			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Nil(t, prices)
			mockPriceRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}
