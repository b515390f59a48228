package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/conciergehq/platform/pkg/plans"
)

// planDoc uses the plan name as document identity, so the _id uniqueness
// constraint resolves concurrent first-time seeding of the same plan.
type planDoc struct {
	Name     string           `bson:"_id"`
	Quotas   map[string]int64 `bson:"quotas"`
	MaxUsers int              `bson:"max_users"`
}

func toPlanDoc(p plans.Plan) planDoc {
	quotas := make(map[string]int64, len(p.Quotas))
	for f, q := range p.Quotas {
		quotas[string(f)] = q
	}
	return planDoc{Name: p.Name, Quotas: quotas, MaxUsers: p.MaxUsers}
}

func (d planDoc) toPlan() plans.Plan {
	quotas := make(map[plans.Feature]int64, len(d.Quotas))
	for f, q := range d.Quotas {
		quotas[plans.Feature(f)] = q
	}
	return plans.Plan{Name: d.Name, Quotas: quotas, MaxUsers: d.MaxUsers}
}

func (s *Store) FindByName(ctx context.Context, name string) (plans.Plan, error) {
	var doc planDoc
	if err := s.plans.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return plans.Plan{}, plans.ErrPlanNotFound
		}
		return plans.Plan{}, fmt.Errorf("mongostore: find plan: %w", err)
	}
	return doc.toPlan(), nil
}

func (s *Store) Insert(ctx context.Context, plan plans.Plan) error {
	_, err := s.plans.InsertOne(ctx, toPlanDoc(plan))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return plans.ErrPlanAlreadyExists
		}
		return fmt.Errorf("mongostore: insert plan: %w", err)
	}
	return nil
}
