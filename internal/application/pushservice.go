// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/XargsUK/todo-issue/internal/domain/model"
	"github.com/XargsUK/todo-issue/internal/domain/port/driven"
)

const (
	// IssuesPerPage is the page size of the issue listing; a shorter page is the last one.
	IssuesPerPage = 100
	issueState    = "all"
)

// errNoHeadCommit is reported when the payload carries neither a commit list
// nor a head commit to diff.
var errNoHeadCommit = errors.New("push payload has no commits and no head commit")

// PushService turns the push that triggered the run into the data the bot
// needs: the diff to scan, the labels to apply, the author to credit and the
// repository's issue history. It holds no state beyond its injected
// dependencies, and every call starts fresh from the payload.
type PushService struct {
	client     driven.GitHubClient
	repo       model.Repository
	payload    model.TriggerPayload
	labels     model.LabelConfig
	currentSHA string
	logger     *slog.Logger
}

// NewPushService creates a PushService for one run. currentSHA is the commit
// the workflow runs on and is the head of range comparisons.
func NewPushService(
	client driven.GitHubClient,
	repo model.Repository,
	payload model.TriggerPayload,
	labels model.LabelConfig,
	currentSHA string,
	logger *slog.Logger,
) *PushService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushService{
		client:     client,
		repo:       repo,
		payload:    payload,
		labels:     labels,
		currentSHA: currentSHA,
		logger:     logger,
	}
}

// Client returns the underlying GitHub client for ad-hoc use by other components.
func (s *PushService) Client() driven.GitHubClient {
	return s.client
}

// Repository returns the repository every call is scoped to.
func (s *PushService) Repository() model.Repository {
	return s.repo
}

// ListIssuesPage returns up to IssuesPerPage issues of any state for the
// 1-based page. Failures are returned to the caller unchanged.
func (s *PushService) ListIssuesPage(ctx context.Context, page int) ([]model.Issue, error) {
	return s.client.ListIssues(ctx, s.repo, page, IssuesPerPage, issueState)
}

// ListAllIssues pages through the issue history until a short page is returned.
func (s *PushService) ListAllIssues(ctx context.Context) ([]model.Issue, error) {
	var all []model.Issue
	for page := 1; ; page++ {
		issues, err := s.ListIssuesPage(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, issues...)
		if len(issues) < IssuesPerPage {
			break
		}
	}
	return all, nil
}

// Diff returns the unified diff of the triggering push. ok is false when there
// is nothing to scan: the head commit is a merge, or fetching the diff failed
// for any reason (a diff too large to generate included). Failures are logged
// and never returned, so an unreadable diff skips the run instead of failing it.
func (s *PushService) Diff(ctx context.Context) (diff string, ok bool) {
	diff, ok, err := s.fetchDiff(ctx)
	if err != nil {
		switch {
		case errors.Is(err, driven.ErrDiffTooLarge):
			s.logger.Error("diff too large, skipping", "repo", s.repo.FullName(), "error", err)
		case errors.Is(err, driven.ErrNotFound):
			// Typically a force push whose "before" commit no longer exists.
			s.logger.Error("commit or range not found, skipping", "repo", s.repo.FullName(), "error", err)
		default:
			s.logger.Error("fetching diff failed, diff file might be too big", "repo", s.repo.FullName(), "error", err)
		}
		return "", false
	}
	return diff, ok
}

func (s *PushService) fetchDiff(ctx context.Context) (string, bool, error) {
	if s.payload.HasCommits() {
		s.logger.Info("commits pushed", "count", len(s.payload.Commits))

		// An empty "before" on a repository's first push is fine: the range
		// request fails, and the initial commit should not create issues anyway.
		diff, err := s.client.CompareCommitsDiff(ctx, s.repo, s.payload.Before, s.currentSHA)
		if err != nil {
			return "", false, err
		}
		return diff, true, nil
	}

	s.logger.Info("one commit added")

	if s.payload.HeadCommit == nil {
		return "", false, errNoHeadCommit
	}
	ref := s.payload.HeadCommit.ID

	commit, err := s.client.GetCommit(ctx, s.repo, ref)
	if err != nil {
		return "", false, err
	}

	// Merges must not raise issues again for changes their commits already brought.
	if commit.IsMerge() {
		s.logger.Info("head commit is a merge, skipping", "sha", ref, "parents", len(commit.ParentSHAs))
		return "", false, nil
	}

	diff, err := s.client.GetCommitDiff(ctx, s.repo, ref)
	if err != nil {
		return "", false, err
	}
	return diff, true, nil
}

// EnsureDefaultLabel creates the default label and returns its name. Creation
// is attempted once and any failure is swallowed: the name is returned even
// when the label could not be created. An existing label is expected and
// logged at debug level; anything else is logged as a warning.
func (s *PushService) EnsureDefaultLabel(ctx context.Context) string {
	label := model.DefaultLabel()

	err := s.client.CreateLabel(ctx, s.repo, label)
	switch {
	case err == nil:
		s.logger.Info("default label created", "label", label.Name)
	case errors.Is(err, driven.ErrAlreadyExists):
		s.logger.Debug("default label already exists", "label", label.Name)
	default:
		s.logger.Warn("creating default label failed", "label", label.Name, "error", err)
	}

	return label.Name
}

// Labels resolves the configured label selection. Explicit names are returned
// as configured, without validation.
func (s *PushService) Labels(ctx context.Context) ([]string, error) {
	switch s.labels.Mode {
	case model.LabelModeNone:
		return []string{}, nil
	case model.LabelModeDefault:
		return []string{s.EnsureDefaultLabel(ctx)}, nil
	case model.LabelModeExplicit:
		return s.labels.Names, nil
	default:
		return nil, fmt.Errorf("unknown label mode %q", s.labels.Mode)
	}
}

// AuthorHandle returns the GitHub username of the head commit's author.
// ok is false when the head commit, its author or the username is missing.
func (s *PushService) AuthorHandle() (handle string, ok bool) {
	head := s.payload.HeadCommit
	if head == nil || head.Author == nil || head.Author.Username == "" {
		return "", false
	}
	return head.Author.Username, true
}
