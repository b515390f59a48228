package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	accountsCollection = "accounts"
	plansCollection    = "plans"
)

var (
	ErrFailedToConnect   = errors.New("mongostore: failed to connect")
	ErrHealthcheckFailed = errors.New("mongostore: healthcheck failed")
)

// Store provides document-store persistence for accounts and plans.
type Store struct {
	client   *mongo.Client
	accounts *mongo.Collection
	plans    *mongo.Collection
}

// New connects to the document store with retry and prepares the unique
// indexes the core relies on: account email and plan name. Those indexes
// are the enforcement points for registration and plan-seeding races.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var client *mongo.Client
	var err error

	for range max(cfg.RetryAttempts, 1) {
		client, err = mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime),
		)
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				break
			}
		}
		time.Sleep(cfg.RetryInterval)
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToConnect, err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:   client,
		accounts: db.Collection(accountsCollection),
		plans:    db.Collection(plansCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects from the document store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Healthcheck returns a ping function suitable for readiness probes.
func (s *Store) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := s.client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
