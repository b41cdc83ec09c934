package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/api/option"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/api/handlers"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/api/middleware"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/config"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/extract"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/jobs"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/jobs/inmemory"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/ledger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/logger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/mail"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/scan"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/session"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/workflow"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to the YAML config file")
		port       = flag.String("port", "", "HTTP server port (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.API.Port = *port
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	ctx := context.Background()

	// Session layer: persisted credential slot plus the auth exchange.
	store := session.NewFileStore(cfg.Session.TokenPath)
	auth := session.NewHTTPAuthService(cfg.API.BaseURL)
	sessionMgr := session.NewManager(store, auth, log)

	// Ledger backends behind the demo/production switch.
	demoLedger := ledger.NewDemoService(time.Now())
	remoteLedger := ledger.NewRemoteService(cfg.API.BaseURL, sessionMgr.Token)
	ledgerSwitch := ledger.NewSwitch(demoLedger, remoteLedger)

	// Mail retrieval. The mock inbox backs demo mode in all deployments;
	// the production inbox is Gmail unless the config says otherwise.
	demoInbox := mail.NewSeededInbox(time.Now())
	var prodInbox mail.Service = demoInbox
	if cfg.Mail.Provider == "gmail" {
		var opts []option.ClientOption
		if cfg.Mail.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Mail.CredentialsFile))
		}
		gmailSvc, err := mail.NewGmailService(ctx, cfg.Mail.User, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gmail service")
		}
		prodInbox = gmailSvc
	} else {
		log.Warn().Msg("Mail provider is mock - production scans will read the seeded inbox")
	}

	// Extraction runs against the same model in both modes; only the
	// mailboxes differ. Categories come from the mode's own ledger.
	demoExtractor := extract.NewGeminiExtractor(cfg.Extract.Model, demoLedger)
	prodExtractor := extract.NewGeminiExtractor(cfg.Extract.Model, remoteLedger)

	demoScanner := scan.NewPipeline(demoInbox, demoExtractor, log)
	prodScanner := scan.NewPipeline(prodInbox, prodExtractor, log)

	controller := workflow.NewController(sessionMgr, ledgerSwitch, demoScanner, prodScanner, log)
	if user := controller.Restore(ctx); user != nil {
		log.Info().Str("username", user.Username).Msg("Restored persisted session")
	}

	// Background scan jobs.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		scanJob, ok := job.(*jobs.ScanJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", scanJob.JobID).
			Str("date_from", scanJob.DateFrom).
			Str("date_to", scanJob.DateTo).
			Bool("is_demo", scanJob.IsDemo).
			Msg("Processing scan job")

		scanner := prodScanner
		if scanJob.IsDemo {
			scanner = demoScanner
		}

		txs, err := scanner.Scan(ctx, scanJob.DateFrom, scanJob.DateTo, scanJob.Senders)
		if err != nil {
			return err
		}
		scanJob.Transactions = txs

		log.Info().
			Str("job_id", scanJob.JobID).
			Int("transaction_count", len(txs)).
			Msg("Scan job completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting scan job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Scan job worker stopped with error")
		}
	}()

	router := handlers.NewRouter(
		handlers.NewSessionHandler(controller, log),
		handlers.NewSendersHandler(controller, log),
		handlers.NewCategoriesHandler(controller),
		handlers.NewTransactionsHandler(controller, jobQueue, jobStore, log),
		handlers.NewReportsHandler(controller, log),
		middleware.Auth(controller),
	)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(router),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.API.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.API.Port).Msg("Starting dashboard API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
