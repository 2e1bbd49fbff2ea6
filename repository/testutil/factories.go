package testutil

import (
	"time"

	"mir4tracker/models"

	"github.com/google/uuid"
)

// CreateTestAccount creates an unconfirmed account with a few counters set
func CreateTestAccount(name string, createdAt time.Time) *models.Account {
	return &models.Account{
		ID:       uuid.NewString(),
		Name:     name,
		Bosses:   models.BossQuantities{Medio2: 10, Grande2: 5},
		SalaPico: "sala 1",
		SpecialBosses: models.SpecialBosses{
			Xama: 1,
		},
		Materials: models.Materials{
			Aco: models.MaterialTiers{Raro: 120, Epico: 6, Lendario: 1},
		},
		CraftResources: models.CraftResources{Po: 500, DS: 20000, Cobre: 80000},
		Gold:           1234.5,
		CreatedAt:      models.FormatTimestamp(createdAt),
	}
}

// CreateConfirmedTestAccount creates an account confirmed at the given instant
func CreateConfirmedTestAccount(name string, confirmedAt time.Time) *models.Account {
	account := CreateTestAccount(name, confirmedAt.Add(-time.Hour))
	account.Confirm(confirmedAt)
	return account
}
