package service

import (
	"math"

	"mir4tracker/models"
)

// Valuate computes the USD value of an account as the sum of every boss count times
// its unit price, rounded to cents. Missing counters contribute zero.
func Valuate(account *models.Account, prices *models.BossPrices) float64 {
	if account == nil || prices == nil {
		return 0
	}

	b := account.Bosses
	s := account.SpecialBosses
	terms := []struct {
		count int
		price float64
	}{
		{b.Medio2, prices.Medio2Price},
		{b.Grande2, prices.Grande2Price},
		{b.Medio4, prices.Medio4Price},
		{b.Grande4, prices.Grande4Price},
		{b.Medio6, prices.Medio6Price},
		{b.Grande6, prices.Grande6Price},
		{b.Medio7, prices.Medio7Price},
		{b.Grande7, prices.Grande7Price},
		{b.Medio8, prices.Medio8Price},
		{b.Grande8, prices.Grande8Price},
		{s.Xama, prices.XamaPrice},
		{s.Praca4F, prices.Praca4FPrice},
		{s.CrachaEpica, prices.CrachaEpicaPrice},
	}

	total := 0.0
	for _, term := range terms {
		// explicit conversion keeps the compiler from fusing multiply and add
		total += float64(float64(term.count) * term.price)
	}
	return roundCents(total)
}

// roundCents rounds half away from zero to two decimal places
func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

func valued(account *models.Account, prices *models.BossPrices) *models.ValuedAccount {
	return &models.ValuedAccount{
		Account:  *account,
		TotalUSD: Valuate(account, prices),
	}
}
