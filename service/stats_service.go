package service

import (
	"context"
	"fmt"

	"mir4tracker/models"
)

// statsService implements the StatsService interface
type statsService struct {
	accountService AccountService
}

// NewStatsService creates a new stats service
func NewStatsService(accountService AccountService) StatsService {
	return &statsService{
		accountService: accountService,
	}
}

// GetStatistics sums every counter group and valuation across all accounts.
// Reads go through the account list, so expired confirmations are swept first.
func (s *statsService) GetStatistics(ctx context.Context) (*models.Statistics, error) {
	accounts, err := s.accountService.ListAccounts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	stats := models.NewStatistics()
	stats.TotalAccounts = len(accounts)

	var gold, usd float64
	for _, account := range accounts {
		if account.Confirmed {
			stats.ConfirmedAccounts++
		}

		for key, value := range account.Bosses.AsMap() {
			stats.TotalBosses[key] += value
		}
		for key, value := range account.SpecialBosses.AsMap() {
			stats.TotalSpecialBosses[key] += value
		}
		for key, tiers := range account.Materials.AsMap() {
			total := stats.TotalMaterials[key]
			total.Raro += tiers.Raro
			total.Epico += tiers.Epico
			total.Lendario += tiers.Lendario
			stats.TotalMaterials[key] = total
		}
		for key, value := range account.CraftResources.AsMap() {
			stats.TotalCraftResources[key] += value
		}

		gold += account.Gold
		usd += account.TotalUSD
	}

	stats.TotalGold = roundCents(gold)
	stats.TotalUSD = roundCents(usd)
	return stats, nil
}
