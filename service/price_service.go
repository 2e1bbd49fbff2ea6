package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"

	"mir4tracker/events"
	"mir4tracker/models"
)

const (
	// The table is a singleton, so the cache holds one entry
	priceCacheSize = 1
	// PriceCacheTTL bounds how stale a cached price table may be when another
	// process shares the same record store
	PriceCacheTTL = 30 * time.Second
)

// cachedPrices is a price table snapshot and the time it was loaded
type cachedPrices struct {
	prices   *models.BossPrices
	loadedAt time.Time
}

// priceService implements the PriceService interface
type priceService struct {
	priceRepo      PriceRepository
	eventPublisher EventPublisher
	cache          *lru.Cache
	cacheTTL       time.Duration
	now            func() time.Time
}

// NewPriceService creates a new price service
func NewPriceService(priceRepo PriceRepository, eventPublisher EventPublisher) PriceService {
	cache, _ := lru.New(priceCacheSize)
	return &priceService{
		priceRepo:      priceRepo,
		eventPublisher: eventPublisher,
		cache:          cache,
		cacheTTL:       PriceCacheTTL,
		now:            time.Now,
	}
}

// GetPrices returns the price table, provisioning and persisting defaults when absent
func (s *priceService) GetPrices(ctx context.Context) (*models.BossPrices, error) {
	if prices, ok := s.cached(); ok {
		return prices, nil
	}

	prices, err := s.priceRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get boss prices: %w", err)
	}

	if prices == nil {
		prices = models.DefaultBossPrices()
		if err := s.priceRepo.Upsert(ctx, prices); err != nil {
			return nil, fmt.Errorf("failed to provision default boss prices: %w", err)
		}
		log.Info("Provisioned default boss prices")
	}

	s.store(prices)
	return prices.Clone(), nil
}

// UpdatePrices merges only the supplied fields onto the current or default price table
func (s *priceService) UpdatePrices(ctx context.Context, patch models.PricesPatch) (*models.BossPrices, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.priceRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get boss prices: %w", err)
	}
	if current == nil {
		current = models.DefaultBossPrices()
	}
	current.ID = models.DefaultPricesID

	patch.ApplyTo(current)

	if err := s.priceRepo.Upsert(ctx, current); err != nil {
		s.cache.Remove(models.DefaultPricesID)
		return nil, fmt.Errorf("failed to update boss prices: %w", err)
	}
	s.store(current)

	fields := make([]string, 0, len(patch))
	for key := range patch {
		fields = append(fields, key)
	}
	sort.Strings(fields)

	log.WithField("fields", fields).Info("Boss prices updated")
	publish(s.eventPublisher, events.PricesUpdatedEvent{Fields: fields})

	return current.Clone(), nil
}

func (s *priceService) cached() (*models.BossPrices, bool) {
	value, ok := s.cache.Get(models.DefaultPricesID)
	if !ok {
		return nil, false
	}
	entry := value.(cachedPrices)
	if s.now().Sub(entry.loadedAt) > s.cacheTTL {
		s.cache.Remove(models.DefaultPricesID)
		return nil, false
	}
	return entry.prices.Clone(), true
}

func (s *priceService) store(prices *models.BossPrices) {
	s.cache.Add(models.DefaultPricesID, cachedPrices{
		prices:   prices.Clone(),
		loadedAt: s.now(),
	})
}
