package models

import (
	"fmt"
	"strings"
)

// ValidationError reports a request field that violates its constraints
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AccountInput is the payload for creating an account. Omitted counters default to zero.
type AccountInput struct {
	Name           string         `json:"name"`
	Bosses         BossQuantities `json:"bosses"`
	SalaPico       string         `json:"sala_pico"`
	SpecialBosses  SpecialBosses  `json:"special_bosses"`
	Materials      Materials      `json:"materials"`
	CraftResources CraftResources `json:"craft_resources"`
	Gold           float64        `json:"gold"`
}

// Validate checks the non-negativity constraints of the input
func (in *AccountInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return newValidationError("name", "is required")
	}
	if err := checkCounters("bosses", in.Bosses.AsMap()); err != nil {
		return err
	}
	if err := checkCounters("special_bosses", in.SpecialBosses.AsMap()); err != nil {
		return err
	}
	for material, tiers := range in.Materials.AsMap() {
		if err := checkCounters("materials."+material, tiers.asMap()); err != nil {
			return err
		}
	}
	if err := checkCounters("craft_resources", in.CraftResources.AsMap()); err != nil {
		return err
	}
	if in.Gold < 0 {
		return newValidationError("gold", "must be greater than or equal to 0")
	}
	return nil
}

func (m MaterialTiers) asMap() map[string]int {
	return map[string]int{"raro": m.Raro, "epico": m.Epico, "lendario": m.Lendario}
}

// AccountPatch is a partial update. Only fields present in the payload are applied,
// and nested counter groups are merged key by key.
type AccountPatch struct {
	Name           *string                   `json:"name,omitempty"`
	Bosses         map[string]int            `json:"bosses,omitempty"`
	SalaPico       *string                   `json:"sala_pico,omitempty"`
	SpecialBosses  map[string]int            `json:"special_bosses,omitempty"`
	Materials      map[string]map[string]int `json:"materials,omitempty"`
	CraftResources map[string]int            `json:"craft_resources,omitempty"`
	Gold           *float64                  `json:"gold,omitempty"`
	Confirmed      *bool                     `json:"confirmed,omitempty"`
}

// Validate checks value ranges and rejects unknown counter keys
func (p *AccountPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return newValidationError("name", "must not be empty")
	}
	if err := checkKnown("bosses", p.Bosses, BossKeys); err != nil {
		return err
	}
	if err := checkKnown("special_bosses", p.SpecialBosses, SpecialBossKeys); err != nil {
		return err
	}
	for material, tiers := range p.Materials {
		if !contains(MaterialKeys, material) {
			return newValidationError("materials."+material, "unknown material")
		}
		if err := checkKnown("materials."+material, tiers, TierKeys); err != nil {
			return err
		}
	}
	if err := checkKnown("craft_resources", p.CraftResources, CraftResourceKeys); err != nil {
		return err
	}
	if p.Gold != nil && *p.Gold < 0 {
		return newValidationError("gold", "must be greater than or equal to 0")
	}
	return nil
}

// ApplyTo merges the patch onto the account. Confirmation changes are stamped with now.
func (p *AccountPatch) ApplyTo(a *Account, now func() string) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.SalaPico != nil {
		a.SalaPico = *p.SalaPico
	}
	for key, value := range p.Bosses {
		a.Bosses.Set(key, value)
	}
	for key, value := range p.SpecialBosses {
		a.SpecialBosses.Set(key, value)
	}
	for material, tiers := range p.Materials {
		target := a.Materials.Get(material)
		if target == nil {
			continue
		}
		for tier, value := range tiers {
			target.Set(tier, value)
		}
	}
	for key, value := range p.CraftResources {
		a.CraftResources.Set(key, value)
	}
	if p.Gold != nil {
		a.Gold = *p.Gold
	}
	if p.Confirmed != nil {
		switch {
		case !*p.Confirmed:
			a.ClearConfirmation()
		case a.ConfirmedAt == nil:
			stamp := now()
			a.Confirmed = true
			a.ConfirmedAt = &stamp
		default:
			a.Confirmed = true
		}
	}
}

// PricesPatch is a partial price table update keyed by price field name
type PricesPatch map[string]float64

// Validate rejects unknown fields and negative prices
func (p PricesPatch) Validate() error {
	for key, value := range p {
		if !contains(PriceKeys, key) {
			return newValidationError(key, "unknown price field")
		}
		if value < 0 {
			return newValidationError(key, "must be greater than or equal to 0")
		}
	}
	return nil
}

// ApplyTo merges the patch onto the price table
func (p PricesPatch) ApplyTo(prices *BossPrices) {
	for key, value := range p {
		prices.Set(key, value)
	}
}

func checkCounters(group string, counters map[string]int) error {
	for key, value := range counters {
		if value < 0 {
			return newValidationError(group+"."+key, "must be greater than or equal to 0")
		}
	}
	return nil
}

func checkKnown(group string, counters map[string]int, known []string) error {
	for key, value := range counters {
		if !contains(known, key) {
			return newValidationError(group+"."+key, "unknown field")
		}
		if value < 0 {
			return newValidationError(group+"."+key, "must be greater than or equal to 0")
		}
	}
	return nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
