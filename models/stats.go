package models

// Statistics aggregates counters and valuations across all accounts
type Statistics struct {
	TotalAccounts       int                      `json:"total_accounts"`
	ConfirmedAccounts   int                      `json:"confirmed_accounts"`
	TotalBosses         map[string]int           `json:"total_bosses"`
	TotalSpecialBosses  map[string]int           `json:"total_special_bosses"`
	TotalMaterials      map[string]MaterialTiers `json:"total_materials"`
	TotalCraftResources map[string]int           `json:"total_craft_resources"`
	TotalGold           float64                  `json:"total_gold"`
	TotalUSD            float64                  `json:"total_usd"`
}

// NewStatistics returns statistics with every category present and zeroed
func NewStatistics() *Statistics {
	stats := &Statistics{
		TotalBosses:         make(map[string]int, len(BossKeys)),
		TotalSpecialBosses:  make(map[string]int, len(SpecialBossKeys)),
		TotalMaterials:      make(map[string]MaterialTiers, len(MaterialKeys)),
		TotalCraftResources: make(map[string]int, len(CraftResourceKeys)),
	}
	for _, key := range BossKeys {
		stats.TotalBosses[key] = 0
	}
	for _, key := range SpecialBossKeys {
		stats.TotalSpecialBosses[key] = 0
	}
	for _, key := range MaterialKeys {
		stats.TotalMaterials[key] = MaterialTiers{}
	}
	for _, key := range CraftResourceKeys {
		stats.TotalCraftResources[key] = 0
	}
	return stats
}
