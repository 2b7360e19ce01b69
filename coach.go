package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

/* ─── Collaborator contracts ─────────────────────────────────────────── */

// foodSearcher finds up to limit catalog foods carrying at least one of the
// given tags (case-insensitive exact tag match).
type foodSearcher interface {
	SearchFoodsByTags(ctx context.Context, tags []string, limit int) ([]food, error)
}

// exercisePicker returns count exercises chosen by the collaborator's own
// selection policy (random for the catalog-backed implementation).
type exercisePicker interface {
	PickRandomExercises(ctx context.Context, count int) ([]exercise, error)
}

/* ─── Precondition errors ────────────────────────────────────────────── */

// These mean "not yet configured", not "badly formed" — distinct from the
// fieldError validation failures in goal.go.
var (
	errWeightNotConfigured        = errors.New("weight not configured")
	errCalorieTargetNotConfigured = errors.New("calorie target not configured")
)

/* ─── Recommendation types ───────────────────────────────────────────── */

const (
	recommendationFood     = "food"
	recommendationExercise = "exercise"
)

// exercisePlan pairs a candidate exercise with the minutes needed to burn
// the current calorie excess.
type exercisePlan struct {
	Exercise exercise `json:"exercise"`
	Minutes  int      `json:"minutes"`
}

// recommendation is what the coach suggests right now: foods to close a
// deficit, or exercises to work off a surplus. Exactly one kind per value;
// a nil *recommendation means the goal was met exactly.
type recommendation struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`

	// Food branch
	Foods             []food `json:"foods,omitempty"`
	RemainingCalories int    `json:"remaining_calories,omitempty"`

	// Exercise branch
	Exercises      []exercisePlan `json:"exercises,omitempty"`
	ExcessCalories int            `json:"excess_calories,omitempty"`
}

/* ─── Tuning constants ───────────────────────────────────────────────── */

// Candidate counts per recommendation. Kept as named constants so they can
// be tuned without touching the decision logic.
const (
	foodCandidateLimit     = 3
	exerciseCandidateCount = 2
)

// mealBand maps a half-open local-hour window to the food tags searched and
// the message wording used during that window.
type mealBand struct {
	name       string
	startHour  int // inclusive
	endHour    int // exclusive
	tags       []string
	messageFmt string // one %d verb: the rounded remaining calories
}

// mealBands covers [05,19) in three bands; everything else (19:00 through
// 04:59, wrapping midnight) falls through to dinnerBand. Bands are half-open,
// non-overlapping, and together exhaustive over the full 24 hours.
var mealBands = []mealBand{
	{
		name:       "breakfast",
		startHour:  5,
		endHour:    11,
		tags:       []string{"breakfast"},
		messageFmt: "You have %d kcal left. Start the day with a solid breakfast.",
	},
	{
		name:       "lunch",
		startHour:  11,
		endHour:    15,
		tags:       []string{"lunch", "protein"},
		messageFmt: "Still %d kcal to go. A protein-forward lunch will carry you through the afternoon.",
	},
	{
		name:       "snack",
		startHour:  15,
		endHour:    19,
		tags:       []string{"snack", "fruit"},
		messageFmt: "%d kcal left. A light snack keeps you on track until dinner.",
	},
}

var dinnerBand = mealBand{
	name:       "dinner",
	tags:       []string{"dinner"},
	messageFmt: "You still have %d kcal for today. Close it out with a proper dinner.",
}

// bandForHour picks the meal band for a local hour (0-23).
func bandForHour(hour int) mealBand {
	for _, b := range mealBands {
		if hour >= b.startHour && hour < b.endHour {
			return b
		}
	}
	return dinnerBand
}

/* ─── Exercise math ──────────────────────────────────────────────────── */

// minutesToBurn inverts the standard per-minute MET burn formula
// kcal/min = MET × 3.5 × weightKG / 200 and rounds up, so the coach never
// under-recommends. Always ≥ 1 for a positive excess.
func minutesToBurn(excessCalories, met, weightKG float64) int {
	return int(math.Ceil((excessCalories * 200) / (met * 3.5 * weightKG)))
}

/* ─── Decision engine ────────────────────────────────────────────────── */

// decideRecommendation is the coach's decision procedure. Given the day's
// balance and the local time it picks either foods to close the remaining
// deficit or exercises to burn off the excess. Returns (nil, nil) when the
// user isn't entitled or the balance is exactly zero. Collaborator failures
// propagate verbatim — no partial or fabricated recommendation.
func decideRecommendation(
	ctx context.Context,
	weightKG float64,
	caloriesTarget, caloriesConsumed float64,
	isEntitled bool,
	now time.Time,
	foods foodSearcher,
	exercises exercisePicker,
) (*recommendation, error) {
	if !isEntitled {
		return nil, nil
	}
	if weightKG <= 0 {
		return nil, errWeightNotConfigured
	}
	if caloriesTarget <= 0 {
		return nil, errCalorieTargetNotConfigured
	}

	remaining := caloriesTarget - caloriesConsumed
	switch {
	case remaining > 0:
		band := bandForHour(now.Hour())
		candidates, err := foods.SearchFoodsByTags(ctx, band.tags, foodCandidateLimit)
		if err != nil {
			return nil, fmt.Errorf("food search: %w", err)
		}
		rounded := int(math.Round(remaining))
		return &recommendation{
			Kind:              recommendationFood,
			Message:           fmt.Sprintf(band.messageFmt, rounded),
			Foods:             candidates,
			RemainingCalories: rounded,
		}, nil

	case remaining < 0:
		excess := -remaining
		candidates, err := exercises.PickRandomExercises(ctx, exerciseCandidateCount)
		if err != nil {
			return nil, fmt.Errorf("exercise pick: %w", err)
		}
		plans := make([]exercisePlan, 0, len(candidates))
		for _, ex := range candidates {
			// A non-positive MET cannot produce a duration; skip bad
			// catalog rows rather than emitting a nonsense plan.
			if ex.MET <= 0 {
				continue
			}
			plans = append(plans, exercisePlan{
				Exercise: ex,
				Minutes:  minutesToBurn(excess, ex.MET, weightKG),
			})
		}
		rounded := int(math.Round(excess))
		return &recommendation{
			Kind:           recommendationExercise,
			Message:        fmt.Sprintf("You're %d kcal over today. A bit of movement clears the slate.", rounded),
			Exercises:      plans,
			ExcessCalories: rounded,
		}, nil

	default:
		// Goal met exactly: a real terminal state, nothing to suggest.
		return nil, nil
	}
}
