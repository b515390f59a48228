package authapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/conciergehq/platform/modules/authapi"
	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/plans"
)

func newTestHandler(t *testing.T) (http.Handler, *auth.Service) {
	t.Helper()

	tokens, err := jwt.NewFromString("test-secret")
	require.NoError(t, err)

	svc := auth.NewService(
		auth.NewMemoryStorage(),
		plans.NewCatalog(plans.NewMemoryStorage()),
		tokens,
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithTokenTTL(time.Hour),
	)
	return authapi.NewRouter(svc, tokens).Handle(), svc
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email":     email,
		"password":  "correct-horse",
		"firstName": "Alice",
		"lastName":  "Martin",
		"plan":      "essential",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns token and user view", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)

		rec := postJSON(t, handler, "/register", registerBody("alice@example.com"))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Token string    `json:"token"`
			User  auth.View `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "alice@example.com", body.User.Email)
		assert.Equal(t, auth.RoleConcierge, body.User.Role)

		// The public view never carries the password hash.
		assert.NotContains(t, rec.Body.String(), "hash")
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)

		require.Equal(t, http.StatusOK, postJSON(t, handler, "/register", registerBody("bob@example.com")).Code)
		assert.Equal(t, http.StatusConflict, postJSON(t, handler, "/register", registerBody("bob@example.com")).Code)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)

		body := registerBody("carol@example.com")
		body["plan"] = "platinum"
		assert.Equal(t, http.StatusBadRequest, postJSON(t, handler, "/register", body).Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)
		postJSON(t, handler, "/register", registerBody("alice@example.com"))

		rec := postJSON(t, handler, "/login", map[string]any{
			"email": "alice@example.com", "password": "correct-horse",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad credentials share one generic body", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)
		postJSON(t, handler, "/register", registerBody("alice@example.com"))

		wrongPassword := postJSON(t, handler, "/login", map[string]any{
			"email": "alice@example.com", "password": "battery-staple",
		})
		unknownEmail := postJSON(t, handler, "/login", map[string]any{
			"email": "nobody@example.com", "password": "battery-staple",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns current view with live usage", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)

		reg := postJSON(t, handler, "/register", registerBody("alice@example.com"))
		var session auth.Session
		require.NoError(t, json.Unmarshal(reg.Body.Bytes(), &session))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+session.Token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			User auth.View `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, session.Account.ID, body.User.ID)
		assert.Equal(t, int64(0), body.User.Usage["iaSearch"])
	})

	t.Run("missing or invalid token", func(t *testing.T) {
		t.Parallel()
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
