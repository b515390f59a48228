package metered_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/conciergehq/platform/modules/metered"
	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/plans"
)

type stubProvider struct{}

func (stubProvider) Search(ctx context.Context, query string) (any, error) {
	return map[string]any{"query": query}, nil
}

func (stubProvider) Suggest(ctx context.Context, query string) (any, error) {
	return map[string]any{"query": query}, nil
}

type env struct {
	handler http.Handler
	svc     *auth.Service
	storage auth.Storage
}

func newEnv(t *testing.T) *env {
	t.Helper()

	tokens, err := jwt.NewFromString("test-secret")
	require.NoError(t, err)

	storage := auth.NewMemoryStorage()
	catalog := plans.NewCatalog(plans.NewMemoryStorage())
	svc := auth.NewService(storage, catalog, tokens, auth.WithBcryptCost(bcrypt.MinCost))

	provider := stubProvider{}
	handler := metered.NewRouter(tokens, storage, catalog, provider, provider).Handle()
	return &env{handler: handler, svc: svc, storage: storage}
}

func (e *env) register(t *testing.T, email, planKey string) *auth.Session {
	t.Helper()

	session, err := e.svc.Register(context.Background(), auth.Registration{
		Email:     email,
		Password:  "correct-horse",
		FirstName: "Alice",
		LastName:  "Martin",
		PlanKey:   planKey,
	})
	require.NoError(t, err)
	return session
}

func (e *env) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestIASearchQuotaScenario(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	session := e.register(t, "alice@example.com", "essential") // iaSearch quota 25

	// All 25 calls within quota succeed and report the updated usage.
	for i := int64(1); i <= 25; i++ {
		rec := e.get("/ia-search?q=chalet", session.Token)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Result map[string]any   `json:"result"`
			Usage  map[string]int64 `json:"usage"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, i, body.Usage["iaSearch"])
		assert.Equal(t, "chalet", body.Result["query"])
	}

	// The 26th call is rejected with an upgrade hint and no increment.
	rec := e.get("/ia-search?q=chalet", session.Token)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	var rejection struct {
		Message string `json:"message"`
		Upgrade bool   `json:"upgrade"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rejection))
	assert.True(t, rejection.Upgrade)

	view, err := e.svc.WhoAmI(context.Background(), mustID(t, session))
	require.NoError(t, err)
	assert.Equal(t, int64(25), view.Usage["iaSearch"])
}

func TestFeaturesAreMeteredIndependently(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	session := e.register(t, "alice@example.com", "free") // iaSearch 5, suggestions 3

	for range 3 {
		require.Equal(t, http.StatusOK, e.get("/suggestions?q=dinner", session.Token).Code)
	}
	assert.Equal(t, http.StatusPaymentRequired, e.get("/suggestions?q=dinner", session.Token).Code)

	// Exhausting suggestions leaves the search quota untouched.
	assert.Equal(t, http.StatusOK, e.get("/ia-search?q=chalet", session.Token).Code)
}

func TestGuardOrdering(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	t.Run("no token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, e.get("/ia-search", "").Code)
	})

	t.Run("wrong role is forbidden before quota is touched", func(t *testing.T) {
		session := e.register(t, "editor@example.com", "essential")

		acc, err := e.storage.GetAccountByEmail(context.Background(), "editor@example.com")
		require.NoError(t, err)

		// Mint a token asserting a non-concierge role.
		tokens, err := jwt.NewFromString("test-secret")
		require.NoError(t, err)
		token, err := tokens.Generate(jwt.SessionClaims{
			Subject:   acc.ID.String(),
			Role:      string(auth.RoleEditor),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, e.get("/ia-search", token).Code)

		view, err := e.svc.WhoAmI(context.Background(), mustID(t, session))
		require.NoError(t, err)
		assert.Equal(t, int64(0), view.Usage["iaSearch"])
	})
}

func mustID(t *testing.T, session *auth.Session) uuid.UUID {
	t.Helper()

	id, err := uuid.Parse(session.Account.ID)
	require.NoError(t, err)
	return id
}
