package main

import (
	"context"
	"sync"
	"time"
)

// coachInput is one recompute trigger's snapshot of the values the decision
// engine needs. Call sites send a fresh snapshot whenever the consumed total
// changes, the target changes, or the clock crosses a meal-band boundary.
type coachInput struct {
	WeightKG         float64
	CaloriesTarget   float64
	CaloriesConsumed float64
	Entitled         bool
}

// recommender wraps the pure decision engine with the small amount of state
// a host screen needs: the current recommendation, a loading flag, and the
// last error. Safe for concurrent use. Superseded in-flight recomputes are
// discarded (last write wins) so a stale result never overwrites a fresher one.
type recommender struct {
	foods     foodSearcher
	exercises exercisePicker
	clock     func() time.Time

	mu      sync.Mutex
	seq     uint64
	current *recommendation
	loading bool
	lastErr error
}

func newRecommender(foods foodSearcher, exercises exercisePicker) *recommender {
	return &recommender{
		foods:     foods,
		exercises: exercises,
		clock:     time.Now,
	}
}

// recompute runs the decision engine for one input snapshot and, unless a
// newer recompute started meanwhile, installs the result. Returns what this
// call computed even when superseded, so direct callers still get an answer.
func (r *recommender) recompute(ctx context.Context, in coachInput) (*recommendation, error) {
	r.mu.Lock()
	r.seq++
	token := r.seq
	r.loading = true
	r.mu.Unlock()

	rec, err := decideRecommendation(ctx,
		in.WeightKG, in.CaloriesTarget, in.CaloriesConsumed,
		in.Entitled, r.clock(), r.foods, r.exercises)

	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.seq {
		// A newer recompute started while this one was in flight.
		return rec, err
	}
	r.loading = false
	r.lastErr = err
	if err == nil {
		r.current = rec
	}
	return rec, err
}

// state returns the current recommendation, whether a recompute is in
// flight, and the last error.
func (r *recommender) state() (*recommendation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.loading, r.lastErr
}
