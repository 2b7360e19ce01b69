package main

import "math"

// macroTargets holds the daily gram targets for the three macronutrients,
// plus the calorie target they were derived from.
type macroTargets struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// Macro safety clamps. These prevent physiologically absurd outputs for
// extreme weights/targets feeding into UI progress bars — a safety net
// applied after derivation, never a primary allocation rule.
const (
	minProteinG = 60
	maxProteinG = 260
	minFatG     = 35
	maxFatG     = 160
	minCarbsG   = 0
	maxCarbsG   = 600
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// computeMacroTargets allocates a calorie target into protein/fat/carb gram
// targets using per-kg heuristics: 2.0 g/kg protein, 0.8 g/kg fat, carbs
// from whatever calories remain (4 kcal/g protein and carbs, 9 kcal/g fat).
func computeMacroTargets(calories int, weightKG float64) macroTargets {
	proteinG := int(math.Round(weightKG * 2.0))
	fatG := int(math.Round(weightKG * 0.8))

	remaining := float64(calories) - 4*float64(proteinG) - 9*float64(fatG)
	if remaining < 0 {
		remaining = 0
	}
	carbsG := int(math.Round(remaining / 4))

	return macroTargets{
		Calories: calories,
		ProteinG: clampInt(proteinG, minProteinG, maxProteinG),
		CarbsG:   clampInt(carbsG, minCarbsG, maxCarbsG),
		FatG:     clampInt(fatG, minFatG, maxFatG),
	}
}
