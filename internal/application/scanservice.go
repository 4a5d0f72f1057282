package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/XargsUK/todo-issue/internal/domain/model"
	"github.com/XargsUK/todo-issue/internal/domain/port/driven"
	"github.com/XargsUK/todo-issue/internal/todo"
)

const reasonNoDiff = "no diff"

// ScanService runs one end-to-end scan of the triggering push: it resolves the
// diff, extracts TODO markers, gathers labels, author and issue history, and
// records the outcome in the optional ledger.
type ScanService struct {
	push   *PushService
	store  driven.ScanStore
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewScanService creates a ScanService. store may be nil, which disables the
// ledger and its re-run detection.
func NewScanService(push *PushService, store driven.ScanStore, logger *slog.Logger) *ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanService{
		push:   push,
		store:  store,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// WithClock replaces the clock used to timestamp ledger entries.
func (s *ScanService) WithClock(clock clockwork.Clock) *ScanService {
	s.clock = clock
	return s
}

// Run performs the scan. A skipped report is returned when the SHA was
// already scanned or there is no diff. Ledger and issue listing failures are
// returned; diff failures never are.
func (s *ScanService) Run(ctx context.Context) (*model.ScanReport, error) {
	repo := s.push.Repository().FullName()
	sha := s.push.currentSHA

	report := &model.ScanReport{
		RepoFullName: repo,
		HeadSHA:      sha,
	}

	if s.store != nil {
		prev, err := s.store.GetBySHA(ctx, repo, sha)
		if err != nil {
			return nil, fmt.Errorf("look up previous scan: %w", err)
		}
		if prev != nil && prev.Status == model.ScanStatusScanned {
			s.logger.Info("commit already scanned, skipping", "repo", repo, "sha", sha, "scanned_at", prev.ScannedAt)
			report.Status = model.ScanStatusSkipped
			report.Reason = fmt.Sprintf("already scanned at %s", prev.ScannedAt.UTC().Format(time.RFC3339))
			return report, nil
		}
	}

	diff, ok := s.push.Diff(ctx)
	if !ok {
		report.Status = model.ScanStatusSkipped
		report.Reason = reasonNoDiff
		if err := s.record(ctx, report, 0); err != nil {
			return nil, err
		}
		return report, nil
	}
	report.DiffBytes = len(diff)

	report.Todos = todo.Scan(diff)
	s.logger.Info("diff scanned",
		"repo", repo,
		"sha", sha,
		"bytes", report.DiffBytes,
		"todos", len(report.Todos),
	)

	if len(report.Todos) > 0 {
		labels, err := s.push.Labels(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve labels: %w", err)
		}
		report.Labels = labels

		if handle, ok := s.push.AuthorHandle(); ok {
			report.Author = handle
		}
	}

	issues, err := s.push.ListAllIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues of %s: %w", repo, err)
	}
	report.ExistingIssues = len(issues)

	report.Status = model.ScanStatusScanned
	if err := s.record(ctx, report, len(issues)); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *ScanService) record(ctx context.Context, report *model.ScanReport, issueCount int) error {
	if s.store == nil {
		return nil
	}

	run := model.ScanRun{
		RepoFullName: report.RepoFullName,
		HeadSHA:      report.HeadSHA,
		Status:       report.Status,
		Reason:       report.Reason,
		DiffBytes:    report.DiffBytes,
		TodoCount:    len(report.Todos),
		IssueCount:   issueCount,
		ScannedAt:    s.clock.Now(),
	}
	if err := s.store.Record(ctx, run); err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}
