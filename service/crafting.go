package service

import (
	"context"
	"fmt"

	"mir4tracker/models"
)

// craftCost is the price of crafting one unit of the next tier
type craftCost struct {
	lower int // units of the tier below
	po    int
	ds    int
	cobre int
}

var (
	epicoCost    = craftCost{lower: 10, po: 25, ds: 5000, cobre: 20000}
	lendarioCost = craftCost{lower: 10, po: 125, ds: 25000, cobre: 100000}
)

// affordable returns how many units the lower tier and the currency pool can pay for
func (c craftCost) affordable(lower int, pool models.CraftResources) int {
	n := lower / c.lower
	n = min(n, pool.Po/c.po)
	n = min(n, pool.DS/c.ds)
	n = min(n, pool.Cobre/c.cobre)
	return max(n, 0)
}

func (c craftCost) spend(n int, pool *models.CraftResources) {
	pool.Po -= n * c.po
	pool.DS -= n * c.ds
	pool.Cobre -= n * c.cobre
}

// MaterialPlan is the crafting outcome for one material
type MaterialPlan struct {
	Material         string               `json:"material"`
	EpicosCrafted    int                  `json:"epicos_crafted"`
	LendariosCrafted int                  `json:"lendarios_crafted"`
	Final            models.MaterialTiers `json:"final"`
}

// CraftingPlan is the outcome of crafting a sequence of materials from one currency pool
type CraftingPlan struct {
	Steps     []MaterialPlan        `json:"steps"`
	Remaining models.CraftResources `json:"remaining"`
}

// PlanCrafting crafts the given materials in order. For each material it crafts as
// many épicos as raros and currencies allow, then as many lendários as épicos and the
// remaining currencies allow. Every step draws on the same pool.
func PlanCrafting(order []string, materials models.Materials, pool models.CraftResources) *CraftingPlan {
	plan := &CraftingPlan{Steps: make([]MaterialPlan, 0, len(order))}

	for _, key := range order {
		tiers := materials.Get(key)
		if tiers == nil {
			continue
		}
		final := *tiers

		epicos := epicoCost.affordable(final.Raro, pool)
		epicoCost.spend(epicos, &pool)
		final.Raro -= epicos * epicoCost.lower
		final.Epico += epicos

		lendarios := lendarioCost.affordable(final.Epico, pool)
		lendarioCost.spend(lendarios, &pool)
		final.Epico -= lendarios * lendarioCost.lower
		final.Lendario += lendarios

		plan.Steps = append(plan.Steps, MaterialPlan{
			Material:         key,
			EpicosCrafted:    epicos,
			LendariosCrafted: lendarios,
			Final:            final,
		})
	}

	plan.Remaining = pool
	return plan
}

// Ingredient is one legendary material requirement of an objective
type Ingredient struct {
	Material string `json:"material"`
	Required int    `json:"required"`
}

// LegendaryObjective is a piece of equipment that needs legendary materials
type LegendaryObjective struct {
	Key         string       `json:"key"`
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// LegendaryObjectives lists the tracked objectives. Earlier entries win progress ties.
var LegendaryObjectives = []LegendaryObjective{
	{Key: "arma", Name: "Arma", Ingredients: []Ingredient{
		{Material: "aco", Required: 300},
		{Material: "esfera", Required: 100},
		{Material: "lunar", Required: 100},
	}},
	{Key: "torso", Name: "Torso", Ingredients: []Ingredient{
		{Material: "aco", Required: 300},
		{Material: "quintessencia", Required: 100},
		{Material: "bugiganga", Required: 100},
	}},
	{Key: "colar", Name: "Colar", Ingredients: []Ingredient{
		{Material: "platina", Required: 300},
		{Material: "iluminado", Required: 100},
		{Material: "anima", Required: 100},
	}},
}

// IngredientProgress is the projected state of one ingredient
type IngredientProgress struct {
	Material string  `json:"material"`
	Required int     `json:"required"`
	Have     int     `json:"have"`
	Progress float64 `json:"progress"`
}

// ObjectiveProgress is the projected completion of one objective
type ObjectiveProgress struct {
	Key         string               `json:"key"`
	Name        string               `json:"name"`
	Progress    float64              `json:"progress"`
	Ingredients []IngredientProgress `json:"ingredients"`
}

// ObjectivesReport is the crafting outlook of an account
type ObjectivesReport struct {
	AccountID  string              `json:"account_id"`
	Name       string              `json:"name"`
	Plan       *CraftingPlan       `json:"plan"`
	Objectives []ObjectiveProgress `json:"objectives"`
	Closest    string              `json:"closest"`
}

// EvaluateObjective projects an objective by planning its ingredients with a fresh
// copy of the currency pool
func EvaluateObjective(objective LegendaryObjective, materials models.Materials, pool models.CraftResources) ObjectiveProgress {
	order := make([]string, len(objective.Ingredients))
	for i, ing := range objective.Ingredients {
		order[i] = ing.Material
	}
	plan := PlanCrafting(order, materials, pool)

	finals := make(map[string]int, len(plan.Steps))
	for _, step := range plan.Steps {
		finals[step.Material] = step.Final.Lendario
	}

	result := ObjectiveProgress{
		Key:         objective.Key,
		Name:        objective.Name,
		Progress:    1,
		Ingredients: make([]IngredientProgress, 0, len(objective.Ingredients)),
	}
	for _, ing := range objective.Ingredients {
		have := finals[ing.Material]
		progress := 1.0
		if ing.Required > 0 {
			progress = min(1, float64(have)/float64(ing.Required))
		}
		result.Ingredients = append(result.Ingredients, IngredientProgress{
			Material: ing.Material,
			Required: ing.Required,
			Have:     have,
			Progress: progress,
		})
		result.Progress = min(result.Progress, progress)
	}
	return result
}

// BuildObjectivesReport evaluates every objective and picks the closest one
func BuildObjectivesReport(account *models.Account) *ObjectivesReport {
	report := &ObjectivesReport{
		AccountID:  account.ID,
		Name:       account.Name,
		Plan:       PlanCrafting(models.MaterialKeys, account.Materials, account.CraftResources),
		Objectives: make([]ObjectiveProgress, 0, len(LegendaryObjectives)),
	}

	best := -1.0
	for _, objective := range LegendaryObjectives {
		progress := EvaluateObjective(objective, account.Materials, account.CraftResources)
		report.Objectives = append(report.Objectives, progress)
		if progress.Progress > best {
			best = progress.Progress
			report.Closest = progress.Key
		}
	}
	return report
}

// GetObjectives projects crafting and objective progress for an account
func (s *accountService) GetObjectives(ctx context.Context, id string) (*ObjectivesReport, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return BuildObjectivesReport(account), nil
}
