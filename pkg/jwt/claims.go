package jwt

import "time"

// PlanSnapshot is the point-in-time view of a plan embedded in a session
// token at mint time. It is a cache for fast-path display only: the
// account store's live counters are authoritative and quota decisions
// must never trust these figures.
type PlanSnapshot struct {
	Name   string           `json:"name"`
	Quotas map[string]int64 `json:"quotas"`
	Usage  map[string]int64 `json:"usage"`
}

// SessionClaims is the payload of a session token: identity and role
// (trusted for authorization) plus the plan snapshot observed at mint
// time. Expiry is fixed at mint; there is no refresh rotation.
type SessionClaims struct {
	Subject   string       `json:"sub"`
	Email     string       `json:"email,omitempty"`
	Role      string       `json:"role"`
	Plan      PlanSnapshot `json:"plan"`
	IssuedAt  int64        `json:"iat"`
	ExpiresAt int64        `json:"exp"`
}

// Valid validates the temporal claims against current time.
// Zero values are treated as unset and are ignored.
func (c SessionClaims) Valid() error {
	now := time.Now().Unix()

	if c.ExpiresAt > 0 && now > c.ExpiresAt {
		return ErrExpiredToken
	}
	if c.IssuedAt > 0 && c.IssuedAt > now+60 {
		// Issued in the future beyond clock-skew allowance.
		return ErrInvalidToken
	}

	return nil
}
