package main

import (
	"fmt"
	"math"
	"time"
)

/* ─── Input validation errors ────────────────────────────────────────── */

// fieldError is a validation failure naming the offending profile field.
// Callers can errors.As on it to surface the field in API responses.
type fieldError struct {
	Field  string
	Reason string
}

func (e *fieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalidField(field, format string, args ...interface{}) error {
	return &fieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

/* ─── Goal configuration constants ───────────────────────────────────── */

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used
// for input validation in patchCoachSettings.
var activityMultipliers = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"high":      1.725,
	"very_high": 1.9,
}

// defaultGoalAdjustments maps each goal type to the fractional TDEE offset
// applied when the caller doesn't supply an explicit adjustment.
var defaultGoalAdjustments = map[string]float64{
	"deficit":     -0.15,
	"maintenance": 0,
	"surplus":     0.10,
}

// goalAdjustmentRanges bounds the adjustment per goal type. Maintenance must
// be exactly 0; deficit and surplus allow up to ±30%.
var goalAdjustmentRanges = map[string][2]float64{
	"deficit":     {-0.30, 0},
	"maintenance": {0, 0},
	"surplus":     {0, 0.30},
}

// validRoundSteps is the set of allowed rounding steps for the calorie target.
var validRoundSteps = map[int]bool{1: true, 5: true, 10: true, 25: true, 50: true, 100: true}

const defaultRoundStep = 10

const (
	minHeightCM = 100
	maxHeightCM = 250
	minWeightKG = 30
	maxWeightKG = 250
	minAgeYears = 13
	maxAgeYears = 90
)

/* ─── Input / output types ───────────────────────────────────────────── */

// goalProfile is the immutable input to the calorie goal calculation.
// GoalAdjustment, when non-nil, overrides the default for GoalType.
type goalProfile struct {
	Gender         string   `json:"gender"`
	BirthDate      string   `json:"birth_date"` // YYYY-MM-DD
	HeightCM       float64  `json:"height_cm"`
	WeightKG       float64  `json:"weight_kg"`
	ActivityLevel  string   `json:"activity_level"`
	GoalType       string   `json:"goal_type"`
	GoalAdjustment *float64 `json:"goal_adjustment"`
}

// goalOptions tunes the calculation. Zero values fall back to defaults:
// RoundTo 10, Now time.Now(). The allowed-adjustment lists, when non-nil,
// restrict the adjustment to an explicit enumerated set — used by callers
// that gate advanced adjustment values behind an entitlement check.
type goalOptions struct {
	RoundTo                   int
	Now                       time.Time
	AllowedDeficitAdjustments []float64
	AllowedSurplusAdjustments []float64
}

// goalBreakdown shows how the target relates to the rounded baseline TDEE.
type goalBreakdown struct {
	BaseTDEE int `json:"base_tdee"`
	Delta    int `json:"delta"`
}

// calorieGoalResult is the full output of the goal calculation. BMR, TDEE
// and ActivityFactor are unrounded so callers can display the raw trajectory;
// only DailyCalorieTarget and the breakdown baseline are rounded.
type calorieGoalResult struct {
	AgeYears           int           `json:"age_years"`
	BMR                float64       `json:"bmr"`
	TDEE               float64       `json:"tdee"`
	ActivityFactor     float64       `json:"activity_factor"`
	GoalType           string        `json:"goal_type"`
	GoalAdjustment     float64       `json:"goal_adjustment"`
	DailyCalorieTarget int           `json:"daily_calorie_target"`
	Breakdown          goalBreakdown `json:"breakdown"`
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

// roundToNearest rounds x to the nearest multiple of step, half away from
// zero (math.Round semantics). Idempotent for any fixed step.
func roundToNearest(x float64, step int) int {
	return int(math.Round(x/float64(step))) * step
}

// ageOn computes calendar-correct age: year difference, decremented when the
// birthday hasn't occurred yet in now's year.
func ageOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Before(birth.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// resolveGoalAdjustment validates GoalType, applies the default adjustment
// when none is given, and enforces the per-goal range plus any allowed-set
// restriction from options.
func resolveGoalAdjustment(p goalProfile, opts goalOptions) (float64, error) {
	def, ok := defaultGoalAdjustments[p.GoalType]
	if !ok {
		return 0, invalidField("goal_type", "must be one of: deficit, maintenance, surplus")
	}

	adj := def
	if p.GoalAdjustment != nil {
		adj = *p.GoalAdjustment
	}

	bounds := goalAdjustmentRanges[p.GoalType]
	if adj < bounds[0] || adj > bounds[1] {
		return 0, invalidField("goal_adjustment", "%.2f out of range [%.2f, %.2f] for goal %s",
			adj, bounds[0], bounds[1], p.GoalType)
	}

	var allowed []float64
	switch p.GoalType {
	case "deficit":
		allowed = opts.AllowedDeficitAdjustments
	case "surplus":
		allowed = opts.AllowedSurplusAdjustments
	}
	if allowed != nil {
		found := false
		for _, a := range allowed {
			if a == adj {
				found = true
				break
			}
		}
		if !found {
			return 0, invalidField("goal_adjustment", "%.2f is not an allowed value for goal %s", adj, p.GoalType)
		}
	}

	return adj, nil
}

/* ─── Goal Engine ────────────────────────────────────────────────────── */

// calculateCalorieGoal computes BMR (Mifflin-St Jeor), TDEE, and the rounded
// daily calorie target for a profile. Pure: identical input (including
// opts.Now) always yields identical output. Every validation failure returns
// a fieldError naming the offending field; no partial result is produced.
func calculateCalorieGoal(p goalProfile, opts goalOptions) (calorieGoalResult, error) {
	var zero calorieGoalResult

	if p.Gender != "male" && p.Gender != "female" {
		if p.Gender == "" {
			return zero, invalidField("gender", "is required")
		}
		return zero, invalidField("gender", "must be male or female")
	}

	// time.Parse rejects impossible calendar dates (e.g. day 31 of a
	// 30-day month), not just malformed strings.
	birth, err := time.Parse("2006-01-02", p.BirthDate)
	if err != nil {
		return zero, invalidField("birth_date", "must be a valid YYYY-MM-DD date")
	}

	if math.IsNaN(p.HeightCM) || math.IsInf(p.HeightCM, 0) || p.HeightCM < minHeightCM || p.HeightCM > maxHeightCM {
		return zero, invalidField("height_cm", "must be between %d and %d", minHeightCM, maxHeightCM)
	}
	if math.IsNaN(p.WeightKG) || math.IsInf(p.WeightKG, 0) || p.WeightKG < minWeightKG || p.WeightKG > maxWeightKG {
		return zero, invalidField("weight_kg", "must be between %d and %d", minWeightKG, maxWeightKG)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	age := ageOn(birth, now)
	if age < minAgeYears || age > maxAgeYears {
		return zero, invalidField("birth_date", "age %d outside supported range [%d, %d]", age, minAgeYears, maxAgeYears)
	}

	factor, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		return zero, invalidField("activity_level", "must be one of: sedentary, light, moderate, high, very_high")
	}

	adj, err := resolveGoalAdjustment(p, opts)
	if err != nil {
		return zero, err
	}

	roundTo := opts.RoundTo
	if roundTo == 0 {
		roundTo = defaultRoundStep
	}
	if !validRoundSteps[roundTo] {
		return zero, invalidField("round_to", "must be one of: 1, 5, 10, 25, 50, 100")
	}

	// BMR via Mifflin-St Jeor: different constant for male vs female
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(age)
	if p.Gender == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * factor
	target := roundToNearest(tdee*(1+adj), roundTo)
	baseTDEE := roundToNearest(tdee, roundTo)

	return calorieGoalResult{
		AgeYears:           age,
		BMR:                bmr,
		TDEE:               tdee,
		ActivityFactor:     factor,
		GoalType:           p.GoalType,
		GoalAdjustment:     adj,
		DailyCalorieTarget: target,
		Breakdown: goalBreakdown{
			BaseTDEE: baseTDEE,
			Delta:    target - baseTDEE,
		},
	}, nil
}

// calculateCalorieGoalFromProfile re-derives the calorie goal for a requested
// goal change using only body/activity fields — the stored adjustment and
// target are deliberately ignored so a settings change never compounds stale
// state. The new goal always gets its default adjustment.
func calculateCalorieGoalFromProfile(clean goalProfile, newGoal string) (calorieGoalResult, error) {
	clean.GoalType = newGoal
	clean.GoalAdjustment = nil
	return calculateCalorieGoal(clean, goalOptions{})
}
