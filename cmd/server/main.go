package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conciergehq/platform/modules/authapi"
	"github.com/conciergehq/platform/modules/metered"
	"github.com/conciergehq/platform/pkg/auth"
	"github.com/conciergehq/platform/pkg/config"
	"github.com/conciergehq/platform/pkg/httpserver"
	"github.com/conciergehq/platform/pkg/jwt"
	"github.com/conciergehq/platform/pkg/mongostore"
	"github.com/conciergehq/platform/pkg/plans"
	"github.com/conciergehq/platform/pkg/respond"
)

type appConfig struct {
	Env        string        `env:"APP_ENV" envDefault:"development"`
	SigningKey string        `env:"JWT_SIGNING_KEY,required"`
	TokenTTL   time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"1h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	var (
		cfg      appConfig
		mongoCfg mongostore.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&cfg)
	config.MustLoad(&mongoCfg)
	config.MustLoad(&httpCfg)

	logger := newLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx := context.Background()

	store, err := mongostore.New(ctx, mongoCfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(ctx) }()

	tokens, err := jwt.NewFromString(cfg.SigningKey)
	if err != nil {
		return err
	}

	catalog := plans.NewCatalog(store)
	svc := auth.NewService(store, catalog, tokens,
		auth.WithLogger(logger),
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithTokenTTL(cfg.TokenTTL),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	provider := aiProvider{}
	r.Mount("/auth", authapi.NewRouter(svc, tokens).Handle())
	r.Mount("/metered", metered.NewRouter(tokens, store, catalog, provider, provider).Handle())

	healthcheck := store.Healthcheck()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := healthcheck(r.Context()); err != nil {
			respond.Error(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.New(httpCfg, logger).Run(ctx, r)
}

func newLogger(appEnv string) *slog.Logger {
	if appEnv == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// aiProvider stands in for the external accommodation-search aggregator
// until that service is wired in deployment. It satisfies both metered
// collaborator interfaces with canned payloads.
type aiProvider struct{}

func (aiProvider) Search(ctx context.Context, query string) (any, error) {
	return map[string]any{"query": query, "items": []any{}}, nil
}

func (aiProvider) Suggest(ctx context.Context, query string) (any, error) {
	return map[string]any{"query": query, "suggestions": []any{}}, nil
}
