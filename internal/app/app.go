package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/bradenhilton/gdl-extractors/internal/extractor"
	"github.com/bradenhilton/gdl-extractors/internal/extractor/weverse"
	_ "github.com/bradenhilton/gdl-extractors/internal/migrations"
	"github.com/bradenhilton/gdl-extractors/internal/pgx"
	repositories "github.com/bradenhilton/gdl-extractors/internal/repositories/fx"
	"github.com/bradenhilton/gdl-extractors/internal/resolver"
	"github.com/bradenhilton/gdl-extractors/internal/resolver/resolverimpl"
	"github.com/bradenhilton/gdl-extractors/internal/sink"
	"github.com/bradenhilton/gdl-extractors/internal/sink/telegramimpl"
	"github.com/bradenhilton/gdl-extractors/pkg/config"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		weverse.New,
		newRegistry,
		fx.Annotate(
			telegramimpl.New,
			fx.As(new(sink.Client)),
		),
		fx.Annotate(
			resolverimpl.New,
			fx.As(new(resolver.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func newRegistry(weverseModule *weverse.Module) *extractor.Registry {
	r := extractor.NewRegistry()
	weverseModule.Register(r)
	return r
}

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Migrations are registered from internal/migrations; "." only has
	// to exist for goose to walk it.
	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, rClient resolver.Client) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg)

			go func() {
				rClient.ResolveAll(runCtx, cfg.Resolver.URLs)

				if err := rClient.ScheduleWatch(runCtx); err != nil {
					log.Error("Watch scheduling error", "Error", err)
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start: %v", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
