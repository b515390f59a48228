package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/plans"
)

type accountDoc struct {
	ID           string           `bson:"_id"`
	Email        string           `bson:"email"`
	FirstName    string           `bson:"first_name"`
	LastName     string           `bson:"last_name"`
	PasswordHash []byte           `bson:"password_hash"`
	Role         string           `bson:"role"`
	PlanName     string           `bson:"plan_name"`
	Usage        map[string]int64 `bson:"usage"`
	CreatedAt    time.Time        `bson:"created_at"`
}

func toAccountDoc(acc *auth.Account) accountDoc {
	usage := make(map[string]int64, len(acc.Usage))
	for f, n := range acc.Usage {
		usage[string(f)] = n
	}
	return accountDoc{
		ID:           acc.ID.String(),
		Email:        acc.Email,
		FirstName:    acc.FirstName,
		LastName:     acc.LastName,
		PasswordHash: acc.PasswordHash,
		Role:         string(acc.Role),
		PlanName:     acc.PlanName,
		Usage:        usage,
		CreatedAt:    acc.CreatedAt,
	}
}

func (d accountDoc) toAccount() (*auth.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("mongostore: malformed account id %q: %w", d.ID, err)
	}
	usage := make(map[plans.Feature]int64, len(d.Usage))
	for f, n := range d.Usage {
		usage[plans.Feature(f)] = n
	}
	return &auth.Account{
		ID:           id,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		PasswordHash: d.PasswordHash,
		Role:         auth.Role(d.Role),
		PlanName:     d.PlanName,
		Usage:        usage,
		CreatedAt:    d.CreatedAt,
	}, nil
}

// CreateAccount inserts the account. The unique index on email turns a
// registration race into a duplicate-key error reported as
// auth.ErrEmailAlreadyExists.
func (s *Store) CreateAccount(ctx context.Context, acc *auth.Account) error {
	_, err := s.accounts.InsertOne(ctx, toAccountDoc(acc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("mongostore: insert account: %w", err)
	}
	return nil
}

func (s *Store) GetAccountByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	return s.findAccount(ctx, bson.M{"_id": id.String()})
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.findAccount(ctx, bson.M{"email": email})
}

func (s *Store) findAccount(ctx context.Context, filter bson.M) (*auth.Account, error) {
	var doc accountDoc
	if err := s.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, fmt.Errorf("mongostore: find account: %w", err)
	}
	return doc.toAccount()
}

// ConsumeUsage performs the quota check-and-increment as a single
// conditional update: the filter requires usage below quota, so two
// requests racing at quota-1 cannot both match. A non-matching filter is
// disambiguated with a follow-up existence check, since "no document"
// covers both an exhausted quota and a vanished account.
func (s *Store) ConsumeUsage(ctx context.Context, id uuid.UUID, feature plans.Feature, quota int64) (int64, error) {
	field := "usage." + string(feature)

	filter := bson.M{"_id": id.String()}
	if quota != plans.Unlimited {
		filter[field] = bson.M{"$lt": quota}
	}

	var doc accountDoc
	err := s.accounts.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{field: int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.Usage[string(feature)], nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("mongostore: consume usage: %w", err)
	}

	if lookupErr := s.accounts.FindOne(ctx, bson.M{"_id": id.String()}).Err(); lookupErr != nil {
		if errors.Is(lookupErr, mongo.ErrNoDocuments) {
			return 0, auth.ErrAccountNotFound
		}
		return 0, fmt.Errorf("mongostore: consume usage: %w", lookupErr)
	}
	return 0, auth.ErrQuotaExceeded
}
