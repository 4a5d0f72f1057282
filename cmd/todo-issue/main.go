package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/XargsUK/todo-issue/internal/adapter/driven/github"
	sqliteadapter "github.com/XargsUK/todo-issue/internal/adapter/driven/sqlite"
	"github.com/XargsUK/todo-issue/internal/adapter/driving/actions"
	"github.com/XargsUK/todo-issue/internal/adapter/driving/report"
	"github.com/XargsUK/todo-issue/internal/application"
	"github.com/XargsUK/todo-issue/internal/config"
	"github.com/XargsUK/todo-issue/internal/domain/port/driven"
)

const recentScansLogged = 5

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Install the configured logger as the default.
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"repo", cfg.Repository.FullName(),
		"sha", cfg.GitHubSHA,
		"label_mode", cfg.Labels.Mode,
		"db_path", cfg.DBPath,
	)

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Read the push that triggered the workflow.
	payload, err := actions.LoadTriggerPayload(cfg.EventPath)
	if err != nil {
		return err
	}

	// 5. Create GitHub client.
	if !cfg.HasToken() {
		slog.Warn("no token configured, using anonymous API access; labels cannot be created")
	}
	ghClient, err := githubadapter.NewClient(cfg.GitHubToken, cfg.APIURL, logger)
	if err != nil {
		return err
	}
	slog.Info("github client created", "api_url", ghClient.BaseURL(), "authenticated", cfg.HasToken())

	// 6. Open the scan ledger when configured.
	var store driven.ScanStore
	var scanRepo *sqliteadapter.ScanRepo
	if cfg.DBPath != "" {
		db, version, err := sqliteadapter.OpenLedger(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("scan ledger opened", "path", db.Path(), "schema_version", version)

		scanRepo = sqliteadapter.NewScanRepo(db)
		store = scanRepo
	}

	// 7. Wire services and run the scan.
	pushSvc := application.NewPushService(ghClient, cfg.Repository, *payload, cfg.Labels, cfg.GitHubSHA, logger)
	scanSvc := application.NewScanService(pushSvc, store, logger)

	result, err := scanSvc.Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("scan complete",
		"status", result.Status,
		"reason", result.Reason,
		"todos", len(result.Todos),
		"added_todos", len(result.AddedTodos()),
		"labels", result.Labels,
		"author", result.Author,
		"existing_issues", result.ExistingIssues,
	)

	if scanRepo != nil {
		logRecentScans(ctx, scanRepo, cfg.Repository.FullName())
	}

	// 8. Write reports.
	if cfg.StepSummaryPath != "" {
		if err := report.AppendStepSummary(cfg.StepSummaryPath, result); err != nil {
			return err
		}
		slog.Debug("step summary written", "path", cfg.StepSummaryPath)
	}
	if cfg.ReportHTMLPath != "" {
		if err := report.WriteHTML(cfg.ReportHTMLPath, result); err != nil {
			return err
		}
		slog.Info("html report written", "path", cfg.ReportHTMLPath)
	}

	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func logRecentScans(ctx context.Context, repo *sqliteadapter.ScanRepo, fullName string) {
	runs, err := repo.ListRecent(ctx, fullName, recentScansLogged)
	if err != nil {
		slog.Warn("listing recent scans failed", "error", err)
		return
	}
	for _, run := range runs {
		slog.Debug("recent scan",
			"sha", run.HeadSHA,
			"status", run.Status,
			"todos", run.TodoCount,
			"scanned_at", run.ScannedAt,
		)
	}
}
