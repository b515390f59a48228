package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/conciergehq/platform/pkg/plans"
)

// Storage defines the account persistence operations the credential
// service and the request guards rely on.
//
// CreateAccount must enforce email uniqueness and return
// ErrEmailAlreadyExists on conflict, so concurrent registrations for the
// same email resolve to a single account.
//
// ConsumeUsage is the one operation requiring stronger-than-eventual
// consistency: the quota check and the increment must be a single
// store-level conditional update, never a read-then-write pair. When
// quota is plans.Unlimited the increment is unconditional (counted for
// observability). It returns the updated counter value, or
// ErrQuotaExceeded without mutating state when usage has reached quota.
type Storage interface {
	CreateAccount(ctx context.Context, acc *Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	ConsumeUsage(ctx context.Context, id uuid.UUID, feature plans.Feature, quota int64) (int64, error)
}
