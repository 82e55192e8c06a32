package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/api/handlers"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/config"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/batch"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/extractor"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(
	cfg *config.Config,
	store core.ObjectStore,
	retriever core.Retriever,
	linkExtractor *extractor.Extractor,
	coordinator *batch.Coordinator,
	tracker *batch.Tracker,
	statusSvc *services.StatusService,
	qaSvc *services.QAService,
) *Server {
	extractHandler := handlers.NewExtractHandler(linkExtractor, cfg.MaxPDFsPerBatch)
	ingestHandler := handlers.NewIngestHandler(linkExtractor, coordinator, tracker)
	statusHandler := handlers.NewStatusHandler(statusSvc)
	qaHandler := handlers.NewQAHandler(qaSvc)
	docHandler := handlers.NewDocumentHandler(store)
	healthHandler := handlers.NewHealthHandler(store, retriever)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Batch kickoff replies 202 before the downloads run, so a short
	// request timeout is safe for every route.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/extract-pdf-links", extractHandler.ExtractPdfLinks)
		api.Post("/process-and-upload-pdfs", ingestHandler.ProcessAndUploadPdfs)
		api.Get("/processing-status", ingestHandler.GetProcessingStatus)
		api.Post("/clear-processing-status", ingestHandler.ClearProcessingStatus)
		api.Post("/cancel-processing", ingestHandler.CancelProcessing)

		api.Post("/trigger-sync", statusHandler.TriggerSync)
		api.Get("/detailed-status", statusHandler.DetailedStatus)

		api.Post("/ask-question", qaHandler.AskQuestion)

		api.Get("/documents", docHandler.ListDocuments)
		api.Delete("/documents", docHandler.ClearDocuments)

		api.Get("/health", healthHandler.Health)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
