package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"megakeep/internal/accounts"
	"megakeep/internal/adapter/remote"
	"megakeep/internal/config"
	"megakeep/internal/domain"
	"megakeep/internal/infrastructure/logger"
	"megakeep/internal/infrastructure/scheduler"
	"megakeep/internal/retry"
	"megakeep/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler *scheduler.Scheduler
	store     *accounts.Store
	client    domain.RemoteClient
	keeper    *usecase.Keeper
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	client, err := newRemoteClient(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("✓ %s provider enabled", client.Name())

	keeper := usecase.NewKeeper(
		client,
		retry.New(),
		log,
		cfg.Keeper.LoginAttempts,
		cfg.Keeper.UploadAttempts,
		cfg.Keeper.RetryDelay,
	)

	return &App{
		config:    cfg,
		logger:    log,
		scheduler: scheduler.New(log),
		store:     accounts.NewStore(log),
		client:    client,
		keeper:    keeper,
	}, nil
}

func newRemoteClient(cfg *config.Config) (domain.RemoteClient, error) {
	switch cfg.Keeper.Provider {
	case "mega":
		return remote.NewMega(remote.NewExecRunner(), cfg.Keeper.MarkerRemotePath), nil
	case "s3":
		return remote.NewS3(&cfg.Providers.S3, cfg.MarkerName()), nil
	case "gdrive":
		return remote.NewGDrive(&cfg.Providers.GDrive, cfg.MarkerName()), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Keeper.Provider)
	}
}

// preflight verifies everything a run depends on before any remote call is
// made: the external tools for the mega provider and the accounts file.
func (a *App) preflight() error {
	if a.config.Keeper.Provider == "mega" {
		for _, binary := range remote.MegaBinaries() {
			if _, err := exec.LookPath(binary); err != nil {
				return fmt.Errorf("required tool %q not found in PATH: %w", binary, err)
			}
		}
	}

	if _, err := os.Stat(a.config.Keeper.AccountsFile); err != nil {
		return fmt.Errorf("accounts file not readable: %w", err)
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.preflight(); err != nil {
		return err
	}

	if a.config.Keeper.Schedule == "" {
		return a.runOnce(ctx)
	}

	if err := a.scheduler.AddJob(a.config.Keeper.Schedule, a.runOnce); err != nil {
		return fmt.Errorf("failed to schedule keep-alive runs: %w", err)
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started, keep-alive runs on %q", a.config.Keeper.Schedule)

	<-ctx.Done()
	return nil
}

// runOnce performs one keep-alive pass over every account in file order.
// A per-account failure never stops the loop.
func (a *App) runOnce(ctx context.Context) error {
	path := a.config.Keeper.AccountsFile

	accts, err := a.store.Load(path)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	a.logger.Infof("Loaded %d account(s) from %s", len(accts), path)

	aggregator := usecase.NewAggregator()
	for _, account := range accts {
		aggregator.Record(a.keeper.Process(ctx, account))
	}

	a.report(aggregator.Finalize())
	return nil
}

func (a *App) report(summary domain.RunSummary) {
	a.logger.Infof("=== Run complete: %d/%d account(s) kept alive ===",
		summary.Succeeded, summary.Attempted)
	a.logger.Infof("Aggregate usage: %s", summary.Totals)

	if len(summary.FailedAccounts) > 0 {
		a.logger.Warnf("Failed accounts: %s", strings.Join(summary.FailedAccounts, ", "))
	}
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.scheduler.Stop()
	a.logger.Close()
}
