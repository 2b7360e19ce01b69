package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

/* ─── Stub collaborators ─────────────────────────────────────────────── */

// stubCatalog implements foodSearcher and exercisePicker in memory, recording
// the arguments of the last call so tests can assert on tag selection.
type stubCatalog struct {
	foods        []food
	exercises    []exercise
	foodsErr     error
	exercisesErr error

	gotTags   []string
	gotLimit  int
	gotCount  int
	foodCalls int
	exerCalls int
}

func (s *stubCatalog) SearchFoodsByTags(_ context.Context, tags []string, limit int) ([]food, error) {
	s.foodCalls++
	s.gotTags = tags
	s.gotLimit = limit
	if s.foodsErr != nil {
		return nil, s.foodsErr
	}
	return s.foods, nil
}

func (s *stubCatalog) PickRandomExercises(_ context.Context, count int) ([]exercise, error) {
	s.exerCalls++
	s.gotCount = count
	if s.exercisesErr != nil {
		return nil, s.exercisesErr
	}
	return s.exercises, nil
}

// at returns a fixed date with the given local hour, for meal-band tests.
func at(hour int) time.Time {
	return time.Date(2026, 6, 15, hour, 30, 0, 0, time.UTC)
}

/* ─── Gate tests ─────────────────────────────────────────────────────── */

// TestDecideRecommendation_NotEntitled: no recommendation and no error — the
// caller shows an upsell instead.
func TestDecideRecommendation_NotEntitled(t *testing.T) {
	cat := &stubCatalog{}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 1800, false, at(9), cat, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil recommendation for non-entitled user, got %+v", rec)
	}
	if cat.foodCalls != 0 || cat.exerCalls != 0 {
		t.Error("catalog must not be queried for non-entitled users")
	}
}

// TestDecideRecommendation_Preconditions: missing weight or target are named
// precondition errors, distinct from each other.
func TestDecideRecommendation_Preconditions(t *testing.T) {
	cat := &stubCatalog{}

	_, err := decideRecommendation(context.Background(), 0, 2200, 1800, true, at(9), cat, cat)
	if !errors.Is(err, errWeightNotConfigured) {
		t.Errorf("weight=0: got %v, want errWeightNotConfigured", err)
	}

	_, err = decideRecommendation(context.Background(), 80, 0, 1800, true, at(9), cat, cat)
	if !errors.Is(err, errCalorieTargetNotConfigured) {
		t.Errorf("target=0: got %v, want errCalorieTargetNotConfigured", err)
	}
}

// TestDecideRecommendation_ZeroRemaining: hitting the goal exactly is a real
// terminal state — no recommendation, no error, no catalog traffic.
func TestDecideRecommendation_ZeroRemaining(t *testing.T) {
	cat := &stubCatalog{}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 2200, true, at(9), cat, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil recommendation at exact goal, got %+v", rec)
	}
	if cat.foodCalls != 0 || cat.exerCalls != 0 {
		t.Error("catalog must not be queried when the balance is zero")
	}
}

/* ─── Food branch tests ──────────────────────────────────────────────── */

// TestDecideRecommendation_MealBands: the hour alone picks the tag set.
// Bands are half-open and cover the full 24 hours.
func TestDecideRecommendation_MealBands(t *testing.T) {
	cases := []struct {
		hour     int
		wantTags []string
	}{
		{5, []string{"breakfast"}},
		{10, []string{"breakfast"}},
		{11, []string{"lunch", "protein"}},
		{14, []string{"lunch", "protein"}},
		{15, []string{"snack", "fruit"}},
		{18, []string{"snack", "fruit"}},
		{19, []string{"dinner"}},
		{23, []string{"dinner"}},
		{0, []string{"dinner"}},
		{4, []string{"dinner"}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("hour %02d", tc.hour), func(t *testing.T) {
			cat := &stubCatalog{foods: []food{{ID: 1, Name: "Apple"}}}
			rec, err := decideRecommendation(context.Background(), 80, 2200, 1800, true, at(tc.hour), cat, cat)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec == nil || rec.Kind != recommendationFood {
				t.Fatalf("expected a food recommendation, got %+v", rec)
			}
			if len(cat.gotTags) != len(tc.wantTags) {
				t.Fatalf("tags = %v, want %v", cat.gotTags, tc.wantTags)
			}
			for i, tag := range tc.wantTags {
				if cat.gotTags[i] != tag {
					t.Errorf("tags = %v, want %v", cat.gotTags, tc.wantTags)
					break
				}
			}
			if cat.gotLimit != foodCandidateLimit {
				t.Errorf("limit = %d, want %d", cat.gotLimit, foodCandidateLimit)
			}
		})
	}
}

// TestDecideRecommendation_BreakfastScenario: target 2200, consumed 1800 at
// 09:00 → remaining 400, breakfast tags, message carries the number.
func TestDecideRecommendation_BreakfastScenario(t *testing.T) {
	cat := &stubCatalog{foods: []food{
		{ID: 1, Name: "Oatmeal with Berries", Calories: 310},
		{ID: 2, Name: "Greek Yogurt with Honey", Calories: 180},
	}}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 1800, true, at(9), cat, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RemainingCalories != 400 {
		t.Errorf("remaining = %d, want 400", rec.RemainingCalories)
	}
	if len(rec.Foods) != 2 {
		t.Errorf("foods = %d candidates, want the 2 supplied", len(rec.Foods))
	}
	if !strings.Contains(rec.Message, "400") {
		t.Errorf("message %q does not embed the remaining calories", rec.Message)
	}
	if !strings.Contains(rec.Message, "breakfast") {
		t.Errorf("message %q does not use the breakfast-band wording", rec.Message)
	}
}

// TestDecideRecommendation_FractionalRemaining: the embedded number is the
// rounded balance, not a truncation.
func TestDecideRecommendation_FractionalRemaining(t *testing.T) {
	cat := &stubCatalog{}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 1799.4, true, at(9), cat, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RemainingCalories != 401 {
		t.Errorf("remaining = %d, want round(400.6) = 401", rec.RemainingCalories)
	}
}

/* ─── Exercise branch tests ──────────────────────────────────────────── */

// TestDecideRecommendation_ExerciseScenario: target 2200, consumed 2500,
// weight 80 at 20:00 → excess 300; MET 6 needs ceil(35.7) = 36 minutes.
func TestDecideRecommendation_ExerciseScenario(t *testing.T) {
	cat := &stubCatalog{exercises: []exercise{
		{ID: 1, Name: "Cycling (moderate)", MET: 6},
		{ID: 2, Name: "Jogging", MET: 7},
	}}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 2500, true, at(20), cat, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Kind != recommendationExercise {
		t.Fatalf("expected an exercise recommendation, got %+v", rec)
	}
	if rec.ExcessCalories != 300 {
		t.Errorf("excess = %d, want 300", rec.ExcessCalories)
	}
	if cat.gotCount != exerciseCandidateCount {
		t.Errorf("count = %d, want %d", cat.gotCount, exerciseCandidateCount)
	}
	if len(rec.Exercises) != 2 {
		t.Fatalf("plans = %d, want 2", len(rec.Exercises))
	}
	if rec.Exercises[0].Minutes != 36 {
		t.Errorf("MET 6 minutes = %d, want ceil(300*200/(6*3.5*80)) = 36", rec.Exercises[0].Minutes)
	}
	// ceil(300*200/(7*3.5*80)) = ceil(30.6) = 31
	if rec.Exercises[1].Minutes != 31 {
		t.Errorf("MET 7 minutes = %d, want 31", rec.Exercises[1].Minutes)
	}
	if !strings.Contains(rec.Message, "300") {
		t.Errorf("message %q does not embed the excess calories", rec.Message)
	}
}

// TestDecideRecommendation_NonPositiveMETSkipped: catalog rows with a zero
// or negative MET can't yield a duration and must be left out of the plans.
func TestDecideRecommendation_NonPositiveMETSkipped(t *testing.T) {
	cat := &stubCatalog{exercises: []exercise{
		{ID: 1, Name: "Broken Row", MET: 0},
		{ID: 2, Name: "Jogging", MET: 7},
		{ID: 3, Name: "Worse Row", MET: -2},
	}}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 2500, true, at(20), cat, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Exercises) != 1 {
		t.Fatalf("plans = %d, want only the valid candidate", len(rec.Exercises))
	}
	if rec.Exercises[0].Exercise.Name != "Jogging" {
		t.Errorf("kept %q, want Jogging", rec.Exercises[0].Exercise.Name)
	}
	if rec.Exercises[0].Minutes < 1 {
		t.Errorf("minutes = %d, want a positive duration", rec.Exercises[0].Minutes)
	}
}

// TestMinutesToBurn_Monotonic: for fixed excess and weight, a higher MET
// never needs more minutes, and minutes is always at least 1 for excess > 0.
func TestMinutesToBurn_Monotonic(t *testing.T) {
	prev := int(^uint(0) >> 1)
	for _, met := range []float64{2.5, 4.3, 6, 7, 8, 11} {
		m := minutesToBurn(300, met, 80)
		if m < 1 {
			t.Errorf("MET %v: minutes = %d, want >= 1", met, m)
		}
		if m > prev {
			t.Errorf("MET %v: minutes = %d > %d at a lower MET", met, m, prev)
		}
		prev = m
	}

	if m := minutesToBurn(1, 11, 120); m != 1 {
		t.Errorf("tiny excess: minutes = %d, want 1 (ceil never yields 0)", m)
	}
}

/* ─── Totality and failure propagation ───────────────────────────────── */

// TestDecideRecommendation_Totality: for an entitled user the outcome is
// exactly one of {food, exercise, none}, matching the sign of the balance.
func TestDecideRecommendation_Totality(t *testing.T) {
	cat := &stubCatalog{
		foods:     []food{{ID: 1, Name: "Apple"}},
		exercises: []exercise{{ID: 1, Name: "Jogging", MET: 7}},
	}
	for consumed := 2190.0; consumed <= 2210.0; consumed += 2.5 {
		rec, err := decideRecommendation(context.Background(), 80, 2200, consumed, true, at(12), cat, cat)
		if err != nil {
			t.Fatalf("consumed %.1f: unexpected error: %v", consumed, err)
		}
		remaining := 2200 - consumed
		switch {
		case remaining > 0:
			if rec == nil || rec.Kind != recommendationFood {
				t.Errorf("consumed %.1f: want food, got %+v", consumed, rec)
			}
		case remaining < 0:
			if rec == nil || rec.Kind != recommendationExercise {
				t.Errorf("consumed %.1f: want exercise, got %+v", consumed, rec)
			}
		default:
			if rec != nil {
				t.Errorf("consumed %.1f: want none, got %+v", consumed, rec)
			}
		}
	}
}

// TestDecideRecommendation_CollaboratorErrors: catalog failures propagate
// with the collaborator's message attached — no fabricated recommendation.
func TestDecideRecommendation_CollaboratorErrors(t *testing.T) {
	boom := errors.New("catalog unavailable")

	cat := &stubCatalog{foodsErr: boom}
	rec, err := decideRecommendation(context.Background(), 80, 2200, 1800, true, at(9), cat, cat)
	if rec != nil {
		t.Errorf("expected no recommendation on food search failure, got %+v", rec)
	}
	if !errors.Is(err, boom) {
		t.Errorf("food branch error = %v, want wrapped %v", err, boom)
	}
	if err == nil || !strings.Contains(err.Error(), "catalog unavailable") {
		t.Errorf("error %v does not carry the collaborator's message", err)
	}

	cat = &stubCatalog{exercisesErr: boom}
	rec, err = decideRecommendation(context.Background(), 80, 2200, 2500, true, at(20), cat, cat)
	if rec != nil {
		t.Errorf("expected no recommendation on exercise pick failure, got %+v", rec)
	}
	if !errors.Is(err, boom) {
		t.Errorf("exercise branch error = %v, want wrapped %v", err, boom)
	}
}
