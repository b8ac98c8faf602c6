package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	"github.com/smartspend/smartspend/internal/config"
	"github.com/smartspend/smartspend/internal/jobs/inmemory"
	"github.com/smartspend/smartspend/internal/logger"
	"github.com/smartspend/smartspend/internal/notify"
	"github.com/smartspend/smartspend/internal/schedule"
	"github.com/smartspend/smartspend/internal/store"
)

func main() {
	var (
		dbPath  = flag.String("db", "", "SQLite database path (overrides SMARTSPEND_DB env)")
		envFile = flag.String("env", "", "Path to .env file")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open database")
	}
	defer st.Close()

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
	if len(sinks) == 0 {
		log.Warn().Msg("No notification channels configured - alerts and reports will only be logged")
	}
	dispatcher := notify.NewDispatcher(log, sinks...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var insights schedule.InsightGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      cfg.GeminiAPIKey,
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create genai client")
		}
		insights = schedule.NewGeminiInsights(client, cfg.GeminiModel)
	}

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(100, 5, jobStore)

	recurring := schedule.NewRecurringProcessor(st, queue, dispatcher, log)
	if err := queue.Start(ctx, recurring.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	scheduler := schedule.NewScheduler(
		recurring,
		schedule.NewBudgetChecker(st, dispatcher, log),
		schedule.NewReporter(st, insights, dispatcher, log),
		log,
	)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down scheduler")
	scheduler.Stop()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := queue.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Queue shutdown failed")
	}
}
