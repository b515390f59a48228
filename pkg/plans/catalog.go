package plans

import (
	"context"
	"errors"
	"maps"
)

// DefaultPlanKey is the plan assigned on registration when none is requested.
const DefaultPlanKey = "free"

// builtin is the compiled-in plan table. Plans are seeded into the store
// lazily on first reference; the table itself never changes at runtime.
var builtin = map[string]Plan{
	"free": {
		Name:     "free",
		Quotas:   map[Feature]int64{FeatureIASearch: 5, FeatureSuggestions: 3},
		MaxUsers: 1,
	},
	"essential": {
		Name:     "essential",
		Quotas:   map[Feature]int64{FeatureIASearch: 25, FeatureSuggestions: 10},
		MaxUsers: 3,
	},
	"premium": {
		Name:     "premium",
		Quotas:   map[Feature]int64{FeatureIASearch: 100, FeatureSuggestions: 50},
		MaxUsers: 10,
	},
	"unlimited": {
		Name:     "unlimited",
		Quotas:   map[Feature]int64{FeatureIASearch: Unlimited, FeatureSuggestions: Unlimited},
		MaxUsers: 25,
	},
}

// Storage defines the plan persistence operations the catalog relies on.
// Insert must enforce name uniqueness and return ErrPlanAlreadyExists on
// conflict so concurrent first-time creations resolve to a single plan.
type Storage interface {
	FindByName(ctx context.Context, name string) (Plan, error)
	Insert(ctx context.Context, plan Plan) error
}

// Catalog resolves plan keys to durable Plan records, creating them from
// the compiled-in table on first reference.
type Catalog struct {
	storage Storage
}

// NewCatalog creates a catalog backed by the given storage.
func NewCatalog(storage Storage) *Catalog {
	return &Catalog{storage: storage}
}

// GetOrCreate looks up a plan by key, seeding it from the compiled-in
// table if absent. Idempotent: a duplicate-creation race is resolved by
// the store's uniqueness constraint and treated as "already exists".
func (c *Catalog) GetOrCreate(ctx context.Context, key string) (Plan, error) {
	plan, err := c.storage.FindByName(ctx, key)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, ErrPlanNotFound) {
		return Plan{}, err
	}

	def, ok := builtin[key]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}

	if err := c.storage.Insert(ctx, clonePlan(def)); err != nil {
		if errors.Is(err, ErrPlanAlreadyExists) {
			// Lost the creation race; the winner's record is authoritative.
			return c.storage.FindByName(ctx, key)
		}
		return Plan{}, err
	}
	return clonePlan(def), nil
}

func clonePlan(p Plan) Plan {
	p.Quotas = maps.Clone(p.Quotas)
	return p
}
