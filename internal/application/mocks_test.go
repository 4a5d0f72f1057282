package application_test

import (
	"context"
	"fmt"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

// --- Mock implementations ---

type mockGitHubClient struct {
	calls []string

	listIssues   func(page int) ([]model.Issue, error)
	compareDiff  func(base, head string) (string, error)
	getCommit    func(ref string) (*model.Commit, error)
	getDiff      func(ref string) (string, error)
	createLabel  func(label model.Label) error
	createdLabel []model.Label
}

func (m *mockGitHubClient) ListIssues(_ context.Context, _ model.Repository, page, perPage int, state string) ([]model.Issue, error) {
	m.calls = append(m.calls, fmt.Sprintf("list-issues page=%d per_page=%d state=%s", page, perPage, state))
	if m.listIssues == nil {
		return []model.Issue{}, nil
	}
	return m.listIssues(page)
}

func (m *mockGitHubClient) CompareCommitsDiff(_ context.Context, _ model.Repository, base, head string) (string, error) {
	m.calls = append(m.calls, "compare "+base+"..."+head)
	return m.compareDiff(base, head)
}

func (m *mockGitHubClient) GetCommit(_ context.Context, _ model.Repository, ref string) (*model.Commit, error) {
	m.calls = append(m.calls, "get-commit "+ref)
	return m.getCommit(ref)
}

func (m *mockGitHubClient) GetCommitDiff(_ context.Context, _ model.Repository, ref string) (string, error) {
	m.calls = append(m.calls, "get-commit-diff "+ref)
	return m.getDiff(ref)
}

func (m *mockGitHubClient) CreateLabel(_ context.Context, _ model.Repository, label model.Label) error {
	m.calls = append(m.calls, "create-label "+label.Name)
	m.createdLabel = append(m.createdLabel, label)
	if m.createLabel == nil {
		return nil
	}
	return m.createLabel(label)
}

type mockScanStore struct {
	runs     []model.ScanRun
	bySHA    map[string]*model.ScanRun
	getErr   error
	recordFn func(run model.ScanRun) error
}

func (m *mockScanStore) Record(_ context.Context, run model.ScanRun) error {
	if m.recordFn != nil {
		if err := m.recordFn(run); err != nil {
			return err
		}
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *mockScanStore) GetBySHA(_ context.Context, _ string, headSHA string) (*model.ScanRun, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.bySHA[headSHA], nil
}

func (m *mockScanStore) ListRecent(_ context.Context, _ string, _ int) ([]model.ScanRun, error) {
	return m.runs, nil
}

func singleParent(ref string) (*model.Commit, error) {
	return &model.Commit{SHA: ref, ParentSHAs: []string{"parent"}}, nil
}

func issuesN(n, offset int) []model.Issue {
	issues := make([]model.Issue, n)
	for i := range issues {
		issues[i] = model.Issue{Number: offset + i + 1}
	}
	return issues
}
