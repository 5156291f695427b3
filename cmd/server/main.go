package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notifica/internal/api"
	"notifica/internal/config"
	"notifica/internal/errs"
	"notifica/internal/imagestore"
	"notifica/internal/imports"
	"notifica/internal/mailer"
	"notifica/internal/masssend"
	"notifica/internal/metrics"
	"notifica/internal/models"
	"notifica/internal/store"
	"notifica/internal/template"
	"notifica/internal/worker"
)

func main() {

	// ------------------------------------------------
	// Logger
	// ------------------------------------------------
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// ------------------------------------------------
	// Config
	// ------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	// ------------------------------------------------
	// Database
	// ------------------------------------------------
	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer st.Close()

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Rendering + Delivery Pipeline
	// ------------------------------------------------
	engine := template.NewEngine()
	images := imagestore.New(cfg.ImageDir, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	sender := mailer.NewSender(&smtpConfigSource{store: st, cfg: cfg}, limiter, logger)

	// mass-send and single sends embed images as CID attachments; the bulk
	// import path inlines them as base64 and skips the template engine
	cidDeliverer := &mailer.Deliverer{
		Assembler: &mailer.Assembler{
			Engine:   engine,
			Embedder: &mailer.CIDEmbedder{Resolver: images, Log: logger},
			Log:      logger,
		},
		Sender:  sender,
		Records: st,
		Log:     logger,
	}
	bulkDeliverer := &mailer.Deliverer{
		Assembler: &mailer.Assembler{
			Embedder: &mailer.InlineEmbedder{Resolver: images, Log: logger},
			Log:      logger,
		},
		Sender:  sender,
		Records: st,
		Log:     logger,
	}

	// ------------------------------------------------
	// Import Jobs (channel + registry + worker pool)
	// ------------------------------------------------
	jobs := make(chan *imports.Job, 100)
	registry := imports.NewRegistry(cfg.JobCapacity, time.Duration(cfg.JobTTLMinutes)*time.Minute)

	processor := &imports.Processor{
		Repo:      st,
		Deliverer: bulkDeliverer,
		Log:       logger,
	}

	var wg sync.WaitGroup
	worker.StartPool(ctx, &wg, cfg.WorkerCount, jobs, processor, registry, logger)

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiHandler := &api.Handler{
		Store:     st,
		Engine:    engine,
		Deliverer: cidDeliverer,
		Mass: &masssend.Orchestrator{
			Repo:      st,
			Deliverer: cidDeliverer,
			Log:       logger,
		},
		Registry: registry,
		Jobs:     jobs,
		Log:      logger,
	}

	apiServer := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: apiHandler.Routes(),
	}

	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	<-ctx.Done()

	logger.Info("shutting down services...")

	// Stop accepting new jobs
	close(jobs)

	// Wait workers to finish
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
}

// smtpConfigSource prefers the smtp_configs table; when no row exists and a
// dev fallback host is configured via env, that is used instead.
type smtpConfigSource struct {
	store *store.Store
	cfg   *config.Config
}

func (s *smtpConfigSource) ActiveSMTPConfig(ctx context.Context) (*models.SMTPConfig, error) {
	active, err := s.store.ActiveSMTPConfig(ctx)
	if err == nil {
		return active, nil
	}
	if err == errs.ErrNoSMTPConfig && s.cfg.SMTPHost != "" {
		return &models.SMTPConfig{
			Host:     s.cfg.SMTPHost,
			Port:     s.cfg.SMTPPort,
			Username: s.cfg.SMTPUser,
			Password: s.cfg.SMTPPassword,
			From:     s.cfg.SMTPFrom,
		}, nil
	}
	return nil, err
}
