package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XargsUK/todo-issue/internal/application"
	"github.com/XargsUK/todo-issue/internal/domain/model"
)

const todoDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,2 +1,3 @@
 package main
+// TODO: handle shutdown signals
 func main() {}
`

const plainDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,2 +1,3 @@
 package main
+// nothing to see here
 func main() {}
`

func newScanService(client *mockGitHubClient, store *mockScanStore, payload model.TriggerPayload, labels model.LabelConfig) *application.ScanService {
	push, _ := newPushService(client, payload, labels)
	if store == nil {
		return application.NewScanService(push, nil, nil)
	}
	return application.NewScanService(push, store, nil)
}

func pushWithAuthor(diff string) (*mockGitHubClient, model.TriggerPayload) {
	client := &mockGitHubClient{
		compareDiff: func(_, _ string) (string, error) { return diff, nil },
		listIssues:  func(page int) ([]model.Issue, error) { return issuesN(3, 0), nil },
	}
	payload := pushOf(1)
	payload.HeadCommit.Author = &model.CommitAuthor{Name: "Jane", Username: "jane"}
	return client, payload
}

func TestScanService_Run_FindsTodosAndResolvesMetadata(t *testing.T) {
	client, payload := pushWithAuthor(todoDiff)
	store := &mockScanStore{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC))
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeDefault}).WithClock(clock)

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusScanned, report.Status)
	assert.Equal(t, "owner/repo", report.RepoFullName)
	assert.Equal(t, "bbb", report.HeadSHA)
	require.Len(t, report.Todos, 1)
	assert.Equal(t, "handle shutdown signals", report.Todos[0].Title)
	assert.Equal(t, []string{model.DefaultLabelName}, report.Labels)
	assert.Equal(t, "jane", report.Author)
	assert.Equal(t, 3, report.ExistingIssues)
	assert.Equal(t, len(todoDiff), report.DiffBytes)

	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, model.ScanStatusScanned, run.Status)
	assert.Equal(t, 1, run.TodoCount)
	assert.Equal(t, 3, run.IssueCount)
	assert.Equal(t, clock.Now(), run.ScannedAt)
}

func TestScanService_Run_NoTodosSkipsLabelResolution(t *testing.T) {
	client, payload := pushWithAuthor(plainDiff)
	svc := newScanService(client, nil, payload, model.LabelConfig{Mode: model.LabelModeDefault})

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusScanned, report.Status)
	assert.Empty(t, report.Todos)
	assert.Nil(t, report.Labels)
	assert.Empty(t, report.Author)
	assert.Empty(t, client.createdLabel, "no label is created when nothing was found")
}

func TestScanService_Run_AbsentDiffIsSkippedAndRecorded(t *testing.T) {
	client, payload := pushWithAuthor("")
	client.compareDiff = func(_, _ string) (string, error) { return "", errors.New("boom") }
	store := &mockScanStore{}
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeNone})

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusSkipped, report.Status)
	assert.Equal(t, "no diff", report.Reason)
	assert.NotContains(t, client.calls, "list-issues page=1 per_page=100 state=all")

	require.Len(t, store.runs, 1)
	assert.Equal(t, model.ScanStatusSkipped, store.runs[0].Status)
	assert.Equal(t, "no diff", store.runs[0].Reason)
}

func TestScanService_Run_AlreadyScannedSHAIsSkipped(t *testing.T) {
	client, payload := pushWithAuthor(todoDiff)
	store := &mockScanStore{
		bySHA: map[string]*model.ScanRun{
			"bbb": {HeadSHA: "bbb", Status: model.ScanStatusScanned, ScannedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		},
	}
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeNone})

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusSkipped, report.Status)
	assert.Equal(t, "already scanned at 2026-01-02T03:04:05Z", report.Reason)
	assert.Empty(t, client.calls, "no API call is made for a scanned SHA")
	assert.Empty(t, store.runs)
}

func TestScanService_Run_PreviouslySkippedSHAIsRescanned(t *testing.T) {
	client, payload := pushWithAuthor(todoDiff)
	store := &mockScanStore{
		bySHA: map[string]*model.ScanRun{
			"bbb": {HeadSHA: "bbb", Status: model.ScanStatusSkipped, Reason: "no diff"},
		},
	}
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeNone})

	report, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.ScanStatusScanned, report.Status)
	require.Len(t, store.runs, 1)
}

func TestScanService_Run_LookupErrorPropagates(t *testing.T) {
	client, payload := pushWithAuthor(todoDiff)
	store := &mockScanStore{getErr: errors.New("database locked")}
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeNone})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database locked")
	assert.Empty(t, client.calls)
}

func TestScanService_Run_IssueListingErrorPropagates(t *testing.T) {
	client, payload := pushWithAuthor(todoDiff)
	client.listIssues = func(int) ([]model.Issue, error) { return nil, errors.New("rate limited") }
	store := &mockScanStore{}
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeNone})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Empty(t, store.runs, "failed runs are not recorded")
}

func TestScanService_Run_RecordErrorPropagates(t *testing.T) {
	client, payload := pushWithAuthor(plainDiff)
	store := &mockScanStore{recordFn: func(model.ScanRun) error { return errors.New("disk full") }}
	svc := newScanService(client, store, payload, model.LabelConfig{Mode: model.LabelModeNone})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestScanService_Run_UnknownLabelModeFails(t *testing.T) {
	client, payload := pushWithAuthor(todoDiff)
	svc := newScanService(client, nil, payload, model.LabelConfig{Mode: model.LabelMode("bogus")})

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve labels")
}
