package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/plans"
)

const minPasswordLength = 8

// Session is the result of a successful registration or login: a signed
// bearer token and the public-safe account view.
type Session struct {
	Token   string `json:"token"`
	Account View   `json:"user"`
}

// Registration carries the inputs of a registration request.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	PlanKey   string // empty means plans.DefaultPlanKey
}

// Service implements the credential operations: registration, login, and
// authenticated self-lookup.
type Service struct {
	storage    Storage
	catalog    *plans.Catalog
	tokens     *jwt.Service
	bcryptCost int
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// Option configures the credential service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithBcryptCost sets the bcrypt cost for password hashing. The default
// cost is tuned so verification takes tens of milliseconds.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// WithTokenTTL sets the session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) { s.tokenTTL = ttl }
}

// NewService creates a credential service.
func NewService(storage Storage, catalog *plans.Catalog, tokens *jwt.Service, opts ...Option) *Service {
	s := &Service{
		storage:    storage,
		catalog:    catalog,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		tokenTTL:   time.Hour,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an account with the least-privileged role and zeroed
// usage counters, then mints a session token. Returns
// ErrEmailAlreadyExists if the email is taken; the store's uniqueness
// constraint is the enforcement point, so a creation race cannot produce
// duplicates. The raw password is hashed immediately and never persisted
// or logged.
func (s *Service) Register(ctx context.Context, reg Registration) (*Session, error) {
	email := normalizeEmail(reg.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(reg.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	planKey := reg.PlanKey
	if planKey == "" {
		planKey = plans.DefaultPlanKey
	}
	plan, err := s.catalog.GetOrCreate(ctx, planKey)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usage := make(map[plans.Feature]int64, len(plan.Quotas))
	for f := range plan.Quotas {
		usage[f] = 0
	}

	acc := &Account{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		PasswordHash: hash,
		Role:         DefaultRole,
		PlanName:     plan.Name,
		Usage:        usage,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.storage.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", acc.ID.String()),
		slog.String("plan", plan.Name),
	)

	return s.mintSession(acc, plan)
}

// Login verifies the password and mints a fresh session token embedding
// the current role, plan snapshot, and usage counters. Unknown email and
// wrong password return the identical ErrInvalidCredentials to prevent
// account enumeration.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, err := s.storage.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	plan, err := s.catalog.GetOrCreate(ctx, acc.PlanName)
	if err != nil {
		return nil, err
	}

	return s.mintSession(acc, plan)
}

// WhoAmI re-reads the account live and returns the current public view,
// including live usage counters. This is the canonical way a client
// refreshes its view of remaining quota; the token's embedded snapshot
// is never consulted here.
func (s *Service) WhoAmI(ctx context.Context, accountID uuid.UUID) (View, error) {
	acc, err := s.storage.GetAccountByID(ctx, accountID)
	if err != nil {
		return View{}, err
	}
	return acc.View(), nil
}

func (s *Service) mintSession(acc *Account, plan plans.Plan) (*Session, error) {
	now := time.Now()

	quotas := make(map[string]int64, len(plan.Quotas))
	for f, q := range plan.Quotas {
		quotas[string(f)] = q
	}
	usage := make(map[string]int64, len(acc.Usage))
	for f, n := range acc.Usage {
		usage[string(f)] = n
	}

	token, err := s.tokens.Generate(jwt.SessionClaims{
		Subject: acc.ID.String(),
		Email:   acc.Email,
		Role:    string(acc.Role),
		Plan: jwt.PlanSnapshot{
			Name:   plan.Name,
			Quotas: quotas,
			Usage:  usage,
		},
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	return &Session{Token: token, Account: acc.View()}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAuthFailure reports whether err should surface to the caller as the
// generic unauthenticated error. A vanished account is deliberately
// indistinguishable from bad credentials to avoid leaking existence.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrAccountNotFound)
}
