// Package authapi exposes the credential service over HTTP: registration,
// login, and authenticated self-lookup.
package authapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/guard"
	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/plans"
	"github.com/conciergehq/platform/pkg/respond"
)

// Router mounts the credential endpoints.
type Router struct {
	svc    *auth.Service
	tokens *jwt.Service
}

// NewRouter creates the auth HTTP router.
func NewRouter(svc *auth.Service, tokens *jwt.Service) *Router {
	return &Router{svc: svc, tokens: tokens}
}

// Handle returns the mountable HTTP handler.
func (h *Router) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(guard.Authenticate(h.tokens)).Get("/me", h.me)

	return r
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Plan      string `json:"plan,omitempty"`
}

func (h *Router) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, respond.ErrBadRequest)
		return
	}

	session, err := h.svc.Register(r.Context(), auth.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PlanKey:   req.Plan,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			respond.Error(w, respond.ErrConflict)
		case errors.Is(err, plans.ErrUnknownPlan):
			respond.ErrorWithMessage(w, respond.ErrBadRequest, "unknown plan")
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			respond.ErrorWithMessage(w, respond.ErrUnprocessableEntity, err.Error())
		default:
			respond.Error(w, err)
		}
		return
	}

	respond.JSON(w, http.StatusOK, session)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Router) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, respond.ErrBadRequest)
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if auth.IsAuthFailure(err) {
			// One generic message for unknown email and wrong password.
			respond.Error(w, respond.ErrUnauthorized)
			return
		}
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, session)
}

func (h *Router) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwt.ClaimsFromContext(r.Context())
	if !ok {
		respond.Error(w, respond.ErrUnauthorized)
		return
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		respond.Error(w, respond.ErrUnauthorized)
		return
	}

	view, err := h.svc.WhoAmI(r.Context(), accountID)
	if err != nil {
		if auth.IsAuthFailure(err) {
			respond.Error(w, respond.ErrUnauthorized)
			return
		}
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"user": view})
}
