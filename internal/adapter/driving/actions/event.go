// Package actions reads the GitHub Actions runtime inputs the bot is driven by.
package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	gh "github.com/google/go-github/v82/github"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

// LoadTriggerPayload reads the event file the runner exposes through
// GITHUB_EVENT_PATH and maps it to a TriggerPayload.
func LoadTriggerPayload(path string) (*model.TriggerPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event payload: %w", err)
	}
	defer f.Close()

	return DecodeTriggerPayload(f)
}

// DecodeTriggerPayload decodes a push event. Absent fields are tolerated at
// every level; only malformed JSON is an error.
func DecodeTriggerPayload(r io.Reader) (*model.TriggerPayload, error) {
	var event gh.PushEvent
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	return mapPushEvent(&event), nil
}

// mapPushEvent converts a go-github PushEvent to a domain TriggerPayload.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapPushEvent(event *gh.PushEvent) *model.TriggerPayload {
	commits := make([]model.PushCommit, 0, len(event.Commits))
	for _, c := range event.Commits {
		commits = append(commits, model.PushCommit{
			ID:      c.GetID(),
			Message: c.GetMessage(),
		})
	}

	payload := &model.TriggerPayload{
		Commits: commits,
		Before:  event.GetBefore(),
	}

	if event.HeadCommit != nil {
		head := &model.HeadCommit{ID: event.HeadCommit.GetID()}
		if author := event.HeadCommit.Author; author != nil {
			head.Author = &model.CommitAuthor{
				Name:     author.GetName(),
				Email:    author.GetEmail(),
				Username: author.GetLogin(),
			}
		}
		payload.HeadCommit = head
	}

	return payload
}
