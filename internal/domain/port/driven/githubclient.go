package driven

import (
	"context"
	"errors"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

// Sentinel errors the GitHub adapter wraps so callers can classify failures
// with errors.Is without depending on go-github types.
var (
	ErrAlreadyExists = errors.New("resource already exists")
	ErrDiffTooLarge  = errors.New("diff too large")
	ErrNotFound      = errors.New("resource not found")
)

// GitHubClient defines the driven port for the GitHub REST calls the bot makes.
// Every method is scoped to the given repository.
type GitHubClient interface {
	// ListIssues returns one page of issues. page is 1-based; state is
	// "open", "closed" or "all".
	ListIssues(ctx context.Context, repo model.Repository, page, perPage int, state string) ([]model.Issue, error)

	// CompareCommitsDiff returns the unified diff of the base...head range.
	CompareCommitsDiff(ctx context.Context, repo model.Repository, base, head string) (string, error)

	// GetCommit returns the metadata of a single commit.
	GetCommit(ctx context.Context, repo model.Repository, ref string) (*model.Commit, error)

	// GetCommitDiff returns the unified diff introduced by a single commit.
	GetCommitDiff(ctx context.Context, repo model.Repository, ref string) (string, error)

	// CreateLabel creates a label without retrying. An existing label with the
	// same name yields an error wrapping ErrAlreadyExists.
	CreateLabel(ctx context.Context, repo model.Repository, label model.Label) error
}
