package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"golang.org/x/sync/semaphore"

	"newsradar/internal/config"
	"newsradar/internal/infrastructure/extract"
	"newsradar/internal/infrastructure/feed"
	"newsradar/internal/infrastructure/llm"
	"newsradar/internal/infrastructure/scheduler"
	"newsradar/internal/infrastructure/slack"
	"newsradar/internal/infrastructure/storage"
	"newsradar/internal/logging"
	"newsradar/internal/ports"
	"newsradar/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	fetcher := feed.NewFetcher(&http.Client{Timeout: cfg.Pipeline.FeedTimeout.Std()})
	parser := feed.NewParser()
	extractor := extract.New(
		&http.Client{Timeout: cfg.Pipeline.ArticleTimeout.Std()},
		baseLogger.With("component", "extractor"),
	)

	if cfg.OpenAI.APIKey == "" {
		baseLogger.Error("OPENAI_API_KEY is not set, relevance scoring will fail")
	}

	oracleSem := semaphore.NewWeighted(cfg.Pipeline.OracleConcurrency)
	oracle := llm.NewClient(cfg.OpenAI, cfg.Pipeline.ScoreTimeout.Std(), oracleSem,
		baseLogger.With("component", "oracle"))

	var db *sql.DB
	var store ports.ArticleStore
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		repository := storage.NewPostgresRepository(opened)
		if err := repository.Init(ctx); err != nil {
			_ = opened.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}

		db = opened
		store = repository
	} else {
		baseLogger.Warn("no database configured, dedup/throttling disabled for this process")
	}

	var notifier ports.Notifier
	if cfg.Slack.WebhookURL != "" {
		notifier = slack.NewNotifier(cfg.Slack.WebhookURL, cfg.Slack.Channel)
	}

	sources := make([]usecase.Source, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		sources = append(sources, usecase.Source{Name: f.Name, URL: f.URL})
	}

	pipeline := usecase.NewPipeline(
		usecase.PipelineDeps{
			Fetcher:    fetcher,
			Parser:     parser,
			Extractor:  extractor,
			Scorer:     oracle,
			Summarizer: oracle,
			Store:      store,
			Notifier:   notifier,
			Logger:     baseLogger.With("component", "pipeline"),
		},
		usecase.PipelineSettings{
			Sources:            sources,
			ScoreThreshold:     cfg.Pipeline.ScoreThreshold,
			PostCap:            cfg.Pipeline.PostCap,
			MaxPerSource:       cfg.Pipeline.MaxPerSource,
			ExtractConcurrency: cfg.Pipeline.ExtractConcurrency,
		},
	)

	application := &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, db: db}

	if spec := cfg.Scheduler.CronExpression; spec != "" {
		driver := scheduler.NewCronScheduler(spec, cfg.Scheduler.Location())
		application.scheduler = usecase.NewScheduler(driver, pipeline,
			baseLogger.With("component", "scheduler"))
	}

	return application, nil
}

// Run executes a single pipeline pass, or blocks on the cron schedule
// when one is configured.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.scheduler == nil {
		return a.pipeline.Run(ctx)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

func (a *Application) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
