package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/conciergehq/platform/pkg/plans"
)

// Role is the closed set of account roles. Authorization is an exact-match
// predicate: each protected endpoint declares the single role it accepts,
// with no hierarchy between roles.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleConcierge     Role = "concierge"
)

// DefaultRole is assigned on registration (least privileged).
const DefaultRole = RoleConcierge

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleEditor, RoleConcierge:
		return true
	}
	return false
}

// Account is a registered user identity: credentials, role, plan
// reference, and per-feature usage counters. Counters are monotonically
// non-decreasing; reset happens only through a billing-cycle rollover,
// which lives outside this core.
type Account struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Role         Role
	PlanName     string
	Usage        map[plans.Feature]int64
	CreatedAt    time.Time
}

// View is the public-safe projection of an account. It never carries the
// password hash.
type View struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Role      Role             `json:"role"`
	Plan      string           `json:"plan"`
	Usage     map[string]int64 `json:"usage"`
}

// View returns the public-safe projection of the account.
func (a *Account) View() View {
	usage := make(map[string]int64, len(a.Usage))
	for f, n := range a.Usage {
		usage[string(f)] = n
	}
	return View{
		ID:        a.ID.String(),
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
		Plan:      a.PlanName,
		Usage:     usage,
	}
}
