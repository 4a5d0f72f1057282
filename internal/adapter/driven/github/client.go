// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/XargsUK/todo-issue/internal/domain/model"
	"github.com/XargsUK/todo-issue/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
	// noRetry shares auth and cache with gh but bypasses the rate-limit
	// transport, which sleeps and re-sends on secondary limits.
	noRetry *gh.Client
	logger  *slog.Logger
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. request logging (debug level, includes whether the cache answered)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. httpcache (ETag-based conditional request caching)
//  4. go-github (GitHub REST API client with token auth)
//
// token may be empty for anonymous access. baseURL overrides the REST
// endpoint (GitHub Enterprise); empty keeps api.github.com.
func NewClient(token, baseURL string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Transport = newLoggingTransport(rateLimitClient.Transport, logger)
	plainClient := &http.Client{Transport: newLoggingTransport(cacheTransport, logger)}

	client := gh.NewClient(rateLimitClient)
	noRetry := gh.NewClient(plainClient)
	if token != "" {
		client = client.WithAuthToken(token)
		noRetry = noRetry.WithAuthToken(token)
	}

	if baseURL != "" {
		u, err := parseBaseURL(baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = u
		noRetry.BaseURL = u
	}

	return &Client{gh: client, noRetry: noRetry, logger: logger}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := gh.NewClient(httpClient)

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	client.BaseURL = u

	return &Client{gh: client, noRetry: client, logger: logger}, nil
}

// BaseURL returns the REST endpoint every request is sent to.
func (c *Client) BaseURL() string {
	return c.gh.BaseURL.String()
}

// ListIssues retrieves a single page of issues (pull requests included, as the
// GitHub API returns them) and maps them to domain model types.
func (c *Client) ListIssues(ctx context.Context, repo model.Repository, page, perPage int, state string) ([]model.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State: state,
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	issues, resp, err := c.gh.Issues.ListByRepo(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("listing issues for %s (page %d): %w", repo.FullName(), page, classifyError(err))
	}

	c.logRateLimit(resp, repo.FullName()+"/issues", page, len(issues))

	result := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		result = append(result, mapIssue(issue))
	}

	return result, nil
}

// CompareCommitsDiff returns the raw unified diff of base...head.
func (c *Client) CompareCommitsDiff(ctx context.Context, repo model.Repository, base, head string) (string, error) {
	diff, resp, err := c.gh.Repositories.CompareCommitsRaw(ctx, repo.Owner, repo.Name, base, head, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("comparing %s %s...%s: %w", repo.FullName(), base, head, classifyError(err))
	}

	c.logRateLimit(resp, repo.FullName()+"/compare", 0, 1)
	return diff, nil
}

// GetCommit returns the SHA and parent SHAs of a single commit.
func (c *Client) GetCommit(ctx context.Context, repo model.Repository, ref string) (*model.Commit, error) {
	commit, resp, err := c.gh.Repositories.GetCommit(ctx, repo.Owner, repo.Name, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching commit %s@%s: %w", repo.FullName(), ref, classifyError(err))
	}

	c.logRateLimit(resp, repo.FullName()+"/commit", 0, 1)

	parents := make([]string, 0, len(commit.Parents))
	for _, p := range commit.Parents {
		parents = append(parents, p.GetSHA())
	}

	return &model.Commit{
		SHA:        commit.GetSHA(),
		ParentSHAs: parents,
	}, nil
}

// GetCommitDiff returns the raw unified diff introduced by a single commit.
func (c *Client) GetCommitDiff(ctx context.Context, repo model.Repository, ref string) (string, error) {
	diff, resp, err := c.gh.Repositories.GetCommitRaw(ctx, repo.Owner, repo.Name, ref, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff of %s@%s: %w", repo.FullName(), ref, classifyError(err))
	}

	c.logRateLimit(resp, repo.FullName()+"/commit-diff", 0, 1)
	return diff, nil
}

// CreateLabel creates a repository label. The request is sent once; a
// secondary rate limit surfaces as an error instead of a delayed retry.
func (c *Client) CreateLabel(ctx context.Context, repo model.Repository, label model.Label) error {
	req := &gh.Label{
		Name:  gh.Ptr(label.Name),
		Color: gh.Ptr(label.Color),
	}
	if label.Description != "" {
		req.Description = gh.Ptr(label.Description)
	}

	_, resp, err := c.noRetry.Issues.CreateLabel(ctx, repo.Owner, repo.Name, req)
	if err != nil {
		return fmt.Errorf("creating label %q on %s: %w", label.Name, repo.FullName(), classifyError(err))
	}

	c.logRateLimit(resp, repo.FullName()+"/create-label", 0, 1)
	return nil
}

// classifyError wraps go-github error responses with the port sentinels.
// Errors that match none of them are returned unchanged.
func classifyError(err error) error {
	var ghErr *gh.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return err
	}

	switch ghErr.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", driven.ErrNotFound, err)
	case http.StatusNotAcceptable:
		// GitHub answers 406 when a diff exceeds its generation limits.
		return fmt.Errorf("%w: %w", driven.ErrDiffTooLarge, err)
	case http.StatusUnprocessableEntity:
		for _, e := range ghErr.Errors {
			if e.Code == "already_exists" {
				return fmt.Errorf("%w: %w", driven.ErrAlreadyExists, err)
			}
		}
		if strings.Contains(strings.ToLower(ghErr.Message), "too large") {
			return fmt.Errorf("%w: %w", driven.ErrDiffTooLarge, err)
		}
	}

	return err
}

// mapIssue converts a go-github Issue to a domain model Issue.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapIssue(i *gh.Issue) model.Issue {
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.GetName())
	}

	return model.Issue{
		Number:        i.GetNumber(),
		Title:         i.GetTitle(),
		Body:          i.GetBody(),
		State:         i.GetState(),
		Author:        i.GetUser().GetLogin(),
		URL:           i.GetHTMLURL(),
		Labels:        labels,
		IsPullRequest: i.IsPullRequest(),
		CreatedAt:     i.GetCreatedAt().Time,
		ClosedAt:      i.GetClosedAt().Time,
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func (c *Client) logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	c.logger.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// parseBaseURL parses a REST endpoint and guarantees the trailing slash
// go-github requires.
func parseBaseURL(baseURL string) (*url.URL, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
