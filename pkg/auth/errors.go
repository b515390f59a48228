package auth

import "errors"

// General authentication errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password does not meet security requirements")
)

// Quota errors
var (
	// ErrQuotaExceeded means the metered limit is reached. Distinct from an
	// authorization failure: it is remediable by upgrading the plan.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrFeatureNotInPlan means the plan does not include the feature at all.
	ErrFeatureNotInPlan = errors.New("feature not included in plan")
)
