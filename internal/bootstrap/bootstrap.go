package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/rfp-matcher/internal/config"
	"github.com/kirillkom/rfp-matcher/internal/core/ports"
	"github.com/kirillkom/rfp-matcher/internal/core/usecase"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/extractor/doctext"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/queue/nats"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/resilience"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/rfp-matcher/internal/infrastructure/textwindow"
)

type App struct {
	Config config.Config

	Queue         ports.MessageQueue
	RFPs          ports.RFPRepository
	Vendors       ports.VendorRepository
	Scores        ports.ScoreRepository
	Notifications ports.NotificationStore

	Ingestor ports.RFPIngestor
	Manager  ports.RFPManager
	Batch    ports.BatchScorer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	rfps := postgres.NewRFPRepository(db)
	vendors := postgres.NewVendorRepository(db)
	scores := postgres.NewScoreRepository(db)
	notifications := postgres.NewNotificationRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaModel, ollama.Options{
		RateLimit:          cfg.JudgeRateLimit,
		RateBurst:          cfg.JudgeRateBurst,
		ResilienceExecutor: executor,
	})
	documentJudge := ollama.NewDocumentJudge(ollamaClient)
	scoringJudge := ollama.NewScoringJudge(ollamaClient)

	condenser := textwindow.NewCondenser(cfg.WindowSize, cfg.WindowOverlap, cfg.MaxWindows)
	texts := doctext.NewExtractor(storage)

	extractor := usecase.NewExtractRFPUseCase(documentJudge)
	ingestor := usecase.NewIngestRFPUseCase(storage, texts, extractor, rfps, queue, condenser)
	manager := usecase.NewManageRFPUseCase(rfps, queue)

	pair := usecase.NewPairScoreUseCase(scoringJudge, time.Duration(cfg.ScoreTimeoutSeconds)*time.Second)
	batch := usecase.NewBatchScoreUseCase(rfps, vendors, scores, notifications, pair, cfg.ScoringMaxConcurrent, cfg.NotifyMinScore)

	return &App{
		Config: cfg,

		Queue:         queue,
		RFPs:          rfps,
		Vendors:       vendors,
		Scores:        scores,
		Notifications: notifications,

		Ingestor: ingestor,
		Manager:  manager,
		Batch:    batch,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
