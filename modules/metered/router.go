// Package metered exposes the usage-limited concierge features. Every
// endpoint sits behind the full guard chain: bearer authentication, an
// exact role match, and atomic quota consumption before the feature
// handler runs.
package metered

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/guard"
	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/plans"
	"github.com/conciergehq/platform/pkg/respond"
)

// Searcher performs the downstream AI accommodation search. The real
// aggregator lives outside this core and is consumed as a collaborator.
type Searcher interface {
	Search(ctx context.Context, query string) (any, error)
}

// Suggester generates concierge suggestions for a stay.
type Suggester interface {
	Suggest(ctx context.Context, query string) (any, error)
}

// Router mounts the metered feature endpoints.
type Router struct {
	tokens    *jwt.Service
	store     guard.AccountSource
	catalog   *plans.Catalog
	searcher  Searcher
	suggester Suggester
}

// NewRouter creates the metered features HTTP router.
func NewRouter(tokens *jwt.Service, store guard.AccountSource, catalog *plans.Catalog, searcher Searcher, suggester Suggester) *Router {
	return &Router{
		tokens:    tokens,
		store:     store,
		catalog:   catalog,
		searcher:  searcher,
		suggester: suggester,
	}
}

// Handle returns the mountable HTTP handler.
func (h *Router) Handle() http.Handler {
	r := chi.NewRouter()

	r.Use(guard.Authenticate(h.tokens))
	r.Use(guard.RequireRole(auth.RoleConcierge))

	r.With(guard.ConsumeQuota(h.store, h.catalog, plans.FeatureIASearch)).
		Get("/ia-search", h.iaSearch)
	r.With(guard.ConsumeQuota(h.store, h.catalog, plans.FeatureSuggestions)).
		Get("/suggestions", h.suggestions)

	return r
}

func (h *Router) iaSearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.searcher.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		// Usage is consumed on admission, not on completion; a failed
		// search does not refund the increment.
		respond.Error(w, err)
		return
	}
	h.respondWithUsage(w, r, plans.FeatureIASearch, result)
}

func (h *Router) suggestions(w http.ResponseWriter, r *http.Request) {
	result, err := h.suggester.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	h.respondWithUsage(w, r, plans.FeatureSuggestions, result)
}

func (h *Router) respondWithUsage(w http.ResponseWriter, r *http.Request, feature plans.Feature, result any) {
	usage, _ := guard.UsageFromContext(r.Context(), feature)
	respond.JSON(w, http.StatusOK, map[string]any{
		"result": result,
		"usage":  map[string]int64{string(feature): usage},
	})
}
