package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smartspend/smartspend/internal/api"
	"github.com/smartspend/smartspend/internal/api/handlers"
	"github.com/smartspend/smartspend/internal/catalog"
	"github.com/smartspend/smartspend/internal/classify"
	"github.com/smartspend/smartspend/internal/config"
	"github.com/smartspend/smartspend/internal/importer"
	"github.com/smartspend/smartspend/internal/logger"
	"github.com/smartspend/smartspend/internal/notify"
	"github.com/smartspend/smartspend/internal/store"
)

func main() {
	var (
		port     = flag.String("port", "", "HTTP server port (overrides PORT env)")
		dbPath   = flag.String("db", "", "SQLite database path (overrides SMARTSPEND_DB env)")
		envFile  = flag.String("env", "", "Path to .env file")
		dayFirst = flag.Bool("day-first", false, "Read ambiguous two-digit dates as day-month")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer st.Close()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("Failed to load category catalog")
		}
	}

	ctx := context.Background()

	var classifier classify.Classifier
	if cfg.GeminiAPIKey != "" {
		gemini, err := classify.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cat)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini classifier")
		}
		classifier = gemini
	} else {
		log.Warn().Msg("No Gemini API key configured - unmatched descriptions fall back to the default category")
	}
	resolver := classify.NewResolver(cat, classifier, log)

	var sinks []notify.Sink
	if cfg.EmailEnabled() {
		sinks = append(sinks, notify.NewEmailSink(cfg.ResendAPIKey, cfg.EmailFrom))
	}
	if cfg.TwilioEnabled() {
		if cfg.TwilioSMSFrom != "" {
			sinks = append(sinks, notify.NewSMSSink(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioSMSFrom))
		}
		if cfg.TwilioWhatsAppFrom != "" {
			sinks = append(sinks, notify.NewWhatsAppSink(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom))
		}
	}

	var events importer.EventPublisher
	if len(sinks) > 0 {
		events = notify.NewImportListener(st, notify.NewDispatcher(log, sinks...), log)
	} else {
		log.Warn().Msg("No notification channels configured - import notifications disabled")
	}

	parser := importer.NewStatementParser(
		importer.NewRowNormalizer(&importer.DateNormalizer{DayFirst: *dayFirst}), log)
	reconciler := importer.NewReconciler(st, resolver, events, log)

	router := api.NewRouter(
		handlers.NewImportsHandler(parser, reconciler, st, log),
		handlers.NewAccountsHandler(st, log),
		handlers.NewTransactionsHandler(st, log),
		handlers.NewCategoriesHandler(cat, resolver, log),
		log,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
