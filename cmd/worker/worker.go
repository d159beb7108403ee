package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/loadextract/internal/api"
	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/internal/extraction"
	"github.com/JaimeStill/loadextract/internal/infrastructure"
)

// Worker owns the infrastructure, the extraction pollers, and the optional
// ops HTTP server.
type Worker struct {
	cfg     *config.Config
	infra   *infrastructure.Infrastructure
	pollers []*extraction.Poller
	http    *httpServer
}

// NewWorker wires infrastructure, domain systems, and the extraction
// pipeline. Nothing runs until Start.
func NewWorker(cfg *config.Config) (*Worker, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(cfg, runtime)

	logger := infra.Logger.With("module", "extraction")
	runner := extraction.NewRunner(logger)
	pipeline := extraction.NewPipeline(&extraction.Runtime{
		Queue:      domain.Documents,
		Storage:    infra.Storage,
		Events:     domain.Events,
		Examples:   domain.Examples,
		Runner:     runner,
		Reader:     extraction.NewPDFReader(),
		Extraction: cfg.Extraction,
		Learning:   cfg.Learning,
		Logger:     logger,
	})

	logger.Info(
		"ocr tools",
		extraction.ToolOCRmyPDF, runner.Available(cfg.Extraction.OCRmyPDF),
		"pdftoppm", runner.Available(cfg.Extraction.Pdftoppm),
		extraction.ToolTesseract, runner.Available(cfg.Extraction.Tesseract),
	)

	pollers := make([]*extraction.Poller, cfg.Worker.Pollers)
	for i := range pollers {
		pollers[i] = extraction.NewPoller(
			domain.Documents,
			pipeline,
			cfg.Worker.BatchSize,
			cfg.Worker.PollIntervalDuration(),
			logger.With("poller", i),
		)
	}

	w := &Worker{
		cfg:     cfg,
		infra:   infra,
		pollers: pollers,
	}

	if cfg.Server.IsEnabled() {
		handler := api.NewHandler(&cfg.API, runtime, domain)
		router := buildRouter(infra.Lifecycle, cfg.API.BasePath, handler, infra.Database)
		w.http = newHTTPServer(&cfg.Server, router, infra.Logger)
	}

	infra.Logger.Info(
		"worker initialized",
		"version", cfg.Version,
		"pollers", cfg.Worker.Pollers,
		"batch_size", cfg.Worker.BatchSize,
		"ops_server", cfg.Server.IsEnabled(),
	)

	return w, nil
}

// Start launches the infrastructure, the ops server, and every poller.
// Pollers wait for startup to complete before claiming work.
func (w *Worker) Start() error {
	if err := w.start(); err != nil {
		return err
	}

	lc := w.infra.Lifecycle
	lc.Go(func(ctx context.Context) {
		lc.WaitForStartup()
		w.infra.Logger.Info("all subsystems ready")

		g, ctx := errgroup.WithContext(ctx)
		for _, p := range w.pollers {
			g.Go(func() error {
				return p.Run(ctx)
			})
		}
		if err := g.Wait(); err != nil {
			w.infra.Logger.Error("poller stopped", "error", err)
		}
	})

	return nil
}

// RunOnce performs a single claim and process cycle, then shuts down.
func (w *Worker) RunOnce(timeout time.Duration) (int, error) {
	if err := w.start(); err != nil {
		return 0, err
	}

	lc := w.infra.Lifecycle
	lc.WaitForStartup()

	n, err := w.pollers[0].RunOnce(lc.Context())
	if serr := w.Shutdown(timeout); serr != nil && err == nil {
		err = serr
	}
	return n, err
}

// Shutdown cancels the lifecycle context and waits for every hook.
func (w *Worker) Shutdown(timeout time.Duration) error {
	w.infra.Logger.Info("initiating shutdown")
	return w.infra.Lifecycle.Shutdown(timeout)
}

func (w *Worker) start() error {
	w.infra.Logger.Info("starting worker")

	if err := w.infra.Start(); err != nil {
		return err
	}
	if w.http != nil {
		if err := w.http.Start(w.infra.Lifecycle); err != nil {
			return err
		}
	}
	return nil
}
