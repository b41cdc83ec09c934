package commands

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"

	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/config"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/extract"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/ledger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/logger"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/mail"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/scan"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/session"
	"github.com/vigneshpandian/SecretApp-AI-Expense-Tracker/internal/workflow"
)

// app wires the workflow controller and its collaborators for one CLI
// invocation. The CLI is stateless across invocations except for the
// persisted session credential.
type app struct {
	cfg        *config.Config
	controller *workflow.Controller
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	store := session.NewFileStore(cfg.Session.TokenPath)
	auth := session.NewHTTPAuthService(cfg.API.BaseURL)
	sessionMgr := session.NewManager(store, auth, log)

	demoLedger := ledger.NewDemoService(time.Now())
	remoteLedger := ledger.NewRemoteService(cfg.API.BaseURL, sessionMgr.Token)
	ledgerSwitch := ledger.NewSwitch(demoLedger, remoteLedger)

	demoInbox := mail.NewSeededInbox(time.Now())
	var prodInbox mail.Service = demoInbox
	if cfg.Mail.Provider == "gmail" {
		var opts []option.ClientOption
		if cfg.Mail.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Mail.CredentialsFile))
		}
		gmailSvc, err := mail.NewGmailService(ctx, cfg.Mail.User, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating Gmail service: %w", err)
		}
		prodInbox = gmailSvc
	}

	demoExtractor := extract.NewGeminiExtractor(cfg.Extract.Model, demoLedger)
	prodExtractor := extract.NewGeminiExtractor(cfg.Extract.Model, remoteLedger)

	controller := workflow.NewController(
		sessionMgr,
		ledgerSwitch,
		scan.NewPipeline(demoInbox, demoExtractor, log),
		scan.NewPipeline(prodInbox, prodExtractor, log),
		log,
	)

	return &app{cfg: cfg, controller: controller}, nil
}

// establishSession restores the persisted session, or starts a demo session
// when demo is set. Data commands call this before touching the ledger.
func (a *app) establishSession(ctx context.Context, demo bool) error {
	if demo {
		a.controller.StartDemo(ctx)
		return nil
	}
	if a.controller.Restore(ctx) == nil {
		return fmt.Errorf("no active session: run 'secretapp login' first, or pass --demo")
	}
	return nil
}
