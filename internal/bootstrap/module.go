package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/config"
	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/database"
	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/docstore"
	"github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/llm"
	persistencerepo "github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/repository"
	persistenceuow "github.com/frosty865/VOFC-Engine-sub003/internal/infrastructure/persistence/uow"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			persistencerepo.NewSubmissionRepository,
			fx.As(new(ports.SubmissionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			persistencerepo.NewCatalogRepository,
			fx.As(new(ports.CatalogRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			persistenceuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideOllamaClient,
			fx.As(new(ports.ChatClient)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideDocumentStore,
			fx.As(new(ports.DocumentStore)),
		),
	),
	fx.Provide(review.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideOllamaClient(cfg config.Config) (*llm.OllamaClient, error) {
	return llm.NewOllamaClient(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout())
}

func provideDocumentStore(cfg config.Config) (*docstore.FSStore, error) {
	return docstore.NewFSStore(cfg.Storage.IncomingDir, cfg.Storage.ProcessedDir)
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
