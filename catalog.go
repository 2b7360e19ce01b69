package main

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgCatalog is the Postgres-backed food/exercise catalog. It implements both
// coach collaborator contracts (foodSearcher, exercisePicker).
type pgCatalog struct {
	db *pgxpool.Pool
}

func newPGCatalog(db *pgxpool.Pool) *pgCatalog {
	return &pgCatalog{db: db}
}

// SearchFoodsByTags returns up to limit foods carrying at least one of the
// requested tags. Matching is case-insensitive exact-tag: input tags are
// lowered here and compared against lowered catalog tags in SQL.
func (cat *pgCatalog) SearchFoodsByTags(ctx context.Context, tags []string, limit int) ([]food, error) {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}

	foods, err := queryMany[food](cat.db, ctx,
		`SELECT * FROM foods
		 WHERE EXISTS (
			SELECT 1 FROM unnest(tags) AS tag WHERE lower(tag) = ANY(@tags)
		 )
		 ORDER BY name
		 LIMIT @limit`,
		pgx.NamedArgs{"tags": lowered, "limit": limit})
	if err != nil {
		return nil, err
	}
	// Ensure empty slice (not nil) so the JSON field is an array
	if foods == nil {
		foods = []food{}
	}
	return foods, nil
}

// PickRandomExercises returns count exercises chosen uniformly at random.
// The catalog is tiny, so ORDER BY random() is fine.
func (cat *pgCatalog) PickRandomExercises(ctx context.Context, count int) ([]exercise, error) {
	exercises, err := queryMany[exercise](cat.db, ctx,
		`SELECT * FROM exercises ORDER BY random() LIMIT @count`,
		pgx.NamedArgs{"count": count})
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []exercise{}
	}
	return exercises, nil
}
