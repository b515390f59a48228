package guard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/plans"
	"github.com/conciergehq/platform/pkg/respond"
)

// AccountSource is the narrow view of account storage the guards need:
// a live read for plan resolution and the atomic quota consumption.
type AccountSource interface {
	GetAccountByID(ctx context.Context, id uuid.UUID) (*auth.Account, error)
	ConsumeUsage(ctx context.Context, id uuid.UUID, feature plans.Feature, quota int64) (int64, error)
}

// Authenticate extracts the bearer token, verifies signature and expiry,
// and attaches the decoded claims to the request context. All failures
// produce the same generic 401 body; the store is never touched.
func Authenticate(tokens *jwt.Service) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				unauthenticated(w)
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				unauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects with 403 unless the authenticated role matches the
// required role exactly. There is no role hierarchy. Must run after
// Authenticate.
func RequireRole(role auth.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.ClaimsFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}
			if claims.Role != string(role) {
				respond.Error(w, respond.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ConsumeQuota re-reads the account live from the store (the token's
// embedded usage snapshot is never trusted for this decision), resolves
// the plan's quota for the feature, and atomically checks-and-increments
// the usage counter in a single store round trip. On exhaustion it
// responds 402 with an upgrade hint and increments nothing; on success
// the updated counter is attached to the request context. Usage is
// consumed on admission: a downstream handler failure does not refund
// the increment. Must run after Authenticate.
func ConsumeQuota(store AccountSource, catalog *plans.Catalog, feature plans.Feature) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.ClaimsFromContext(r.Context())
			if !ok {
				unauthenticated(w)
				return
			}

			accountID, err := uuid.Parse(claims.Subject)
			if err != nil {
				unauthenticated(w)
				return
			}

			acc, err := store.GetAccountByID(r.Context(), accountID)
			if err != nil {
				// Account vanished between token issuance and lookup:
				// indistinguishable from an invalid token.
				unauthenticated(w)
				return
			}

			plan, err := catalog.GetOrCreate(r.Context(), acc.PlanName)
			if err != nil {
				respond.Error(w, err)
				return
			}

			quota, included := plan.Quota(feature)
			if !included {
				quotaDecision(feature, decisionExceeded)
				quotaExhausted(w)
				return
			}

			usage, err := store.ConsumeUsage(r.Context(), accountID, feature, quota)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrQuotaExceeded):
					quotaDecision(feature, decisionExceeded)
					quotaExhausted(w)
				case errors.Is(err, auth.ErrAccountNotFound):
					unauthenticated(w)
				default:
					respond.Error(w, err)
				}
				return
			}

			quotaDecision(feature, decisionAdmitted)
			next.ServeHTTP(w, r.WithContext(setUsage(r.Context(), feature, usage)))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", jwt.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func unauthenticated(w http.ResponseWriter) {
	respond.Error(w, respond.ErrUnauthorized)
}

// quotaExhausted signals that an upgrade, not re-authentication, is the
// remedy.
func quotaExhausted(w http.ResponseWriter) {
	respond.JSON(w, http.StatusPaymentRequired, map[string]any{
		"message": "quota exceeded for your current plan",
		"upgrade": true,
	})
}
