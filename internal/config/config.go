// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

// Config holds the run configuration loaded from environment variables.
type Config struct {
	GitHubToken     string
	GitHubSHA       string
	Repository      model.Repository
	EventPath       string
	APIURL          string
	Labels          model.LabelConfig
	StepSummaryPath string
	ReportHTMLPath  string
	DBPath          string
	LogLevel        slog.Level
	LogFormat       string
}

// HasToken returns true when an authentication token was configured. Without
// one the client runs anonymously and cannot create labels.
func (c *Config) HasToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// Required: GITHUB_SHA, GITHUB_REPOSITORY, GITHUB_EVENT_PATH.
// The token is read from PRIVAT_READ_TOKEN, falling back to GITHUB_TOKEN.
// Optional variables with defaults: INPUT_LABEL (true), GITHUB_API_URL
// (go-github default), TODO_ISSUE_LOG_LEVEL (info), TODO_ISSUE_LOG_FORMAT (text).
// Optional outputs: GITHUB_STEP_SUMMARY, TODO_ISSUE_REPORT_HTML, TODO_ISSUE_DB_PATH.
func Load() (*Config, error) {
	token := os.Getenv("PRIVAT_READ_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	sha := os.Getenv("GITHUB_SHA")
	if sha == "" {
		return nil, errors.New("GITHUB_SHA is required")
	}

	repo, err := model.ParseRepository(os.Getenv("GITHUB_REPOSITORY"))
	if err != nil {
		return nil, fmt.Errorf("GITHUB_REPOSITORY: %w", err)
	}

	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return nil, errors.New("GITHUB_EVENT_PATH is required")
	}

	labels, err := ParseLabelInput(os.Getenv("INPUT_LABEL"))
	if err != nil {
		return nil, fmt.Errorf("INPUT_LABEL: %w", err)
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("TODO_ISSUE_LOG_LEVEL"); ok && v != "" {
		if err := logLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("TODO_ISSUE_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	logFormat := "text"
	if v, ok := os.LookupEnv("TODO_ISSUE_LOG_FORMAT"); ok && v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return nil, fmt.Errorf("TODO_ISSUE_LOG_FORMAT must be text or json, got %q", v)
		}
		logFormat = v
	}

	return &Config{
		GitHubToken:     token,
		GitHubSHA:       sha,
		Repository:      repo,
		EventPath:       eventPath,
		APIURL:          os.Getenv("GITHUB_API_URL"),
		Labels:          labels,
		StepSummaryPath: os.Getenv("GITHUB_STEP_SUMMARY"),
		ReportHTMLPath:  os.Getenv("TODO_ISSUE_REPORT_HTML"),
		DBPath:          os.Getenv("TODO_ISSUE_DB_PATH"),
		LogLevel:        logLevel,
		LogFormat:       logFormat,
	}, nil
}

// ParseLabelInput interprets the label input: "false" disables labels, empty
// or "true" selects the default label, anything else is a comma or newline
// separated list of label names.
func ParseLabelInput(v string) (model.LabelConfig, error) {
	v = strings.TrimSpace(v)

	switch strings.ToLower(v) {
	case "", "true":
		return model.LabelConfig{Mode: model.LabelModeDefault}, nil
	case "false":
		return model.LabelConfig{Mode: model.LabelModeNone}, nil
	}

	var names []string
	for _, field := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '\n' }) {
		if name := strings.TrimSpace(field); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return model.LabelConfig{}, fmt.Errorf("no label names in %q", v)
	}

	return model.LabelConfig{Mode: model.LabelModeExplicit, Names: names}, nil
}
