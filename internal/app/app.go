// internal/app/app.go
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/config"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/batch"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/extractor"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/fetcher"
	objectclient "github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/object-client"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/retrieval"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/services"
)

type App struct {
	Store       core.ObjectStore
	Retriever   core.Retriever
	Coordinator *batch.Coordinator
	Server      *Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := objectclient.LoadAWSConfig(appCtx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := objectclient.NewS3Store(awsCfg, cfg.BucketName, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("object store ready", "bucket", cfg.BucketName)

	retriever := retrieval.NewBedrockRetriever(awsCfg, cfg, logger)
	logger.Info("retrieval client ready", "knowledge_base", cfg.KnowledgeBaseID)

	jobs := retrieval.NewJobHolder()
	tracker := batch.NewTracker()

	linkExtractor := extractor.New(cfg.DownloadTimeout, logger)
	pdfFetcher := fetcher.New(store, cfg.DownloadTimeout, logger)

	statusSvc := services.NewStatusService(store, retriever, jobs, tracker, logger)
	qaSvc := services.NewQAService(retriever, cfg.DefaultMaxResults, logger)

	coordinator := batch.NewCoordinator(pdfFetcher, statusSvc, tracker,
		cfg.FetchConcurrency, cfg.MaxPDFsPerBatch, logger)

	server := NewServer(cfg, store, retriever, linkExtractor, coordinator, tracker, statusSvc, qaSvc)

	return &App{
		Store:       store,
		Retriever:   retriever,
		Coordinator: coordinator,
		Server:      server,
	}, nil
}

// Close stops any in-flight batch so shutdown does not hang on downloads.
func (a *App) Close() {
	a.Coordinator.Cancel()
}
