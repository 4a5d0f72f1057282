// Package report renders scan results as a GitHub job summary and as a
// standalone HTML page.
package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

const shortSHALen = 7

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
	textSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
	textSanitizer = bluemonday.StrictPolicy()
}

// Markdown renders the report as a job summary section.
func Markdown(r *model.ScanReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## TODO scan of %s@%s\n\n", r.RepoFullName, shortSHA(r.HeadSHA))

	if r.Status == model.ScanStatusSkipped {
		fmt.Fprintf(&b, "Scan skipped: %s.\n", r.Reason)
		return b.String()
	}

	if len(r.Todos) == 0 {
		fmt.Fprintf(&b, "No TODO markers changed in %d bytes of diff.\n", r.DiffBytes)
	} else {
		b.WriteString("| Change | File | Line | TODO |\n")
		b.WriteString("|--------|------|-----:|------|\n")
		for _, t := range r.Todos {
			fmt.Fprintf(&b, "| %s | %s | %d | %s |\n",
				changeMarker(t.Change), codeSpan(t.File), t.Line, escapeCell(textSanitizer.Sanitize(t.Title)))
		}
	}

	b.WriteString("\n")
	if len(r.Labels) > 0 {
		quoted := make([]string, len(r.Labels))
		for i, l := range r.Labels {
			quoted[i] = codeSpan(l)
		}
		fmt.Fprintf(&b, "- Labels: %s\n", strings.Join(quoted, ", "))
	}
	if r.Author != "" {
		fmt.Fprintf(&b, "- Author: @%s\n", r.Author)
	}
	fmt.Fprintf(&b, "- Existing issues: %d\n", r.ExistingIssues)

	return b.String()
}

// RenderHTML converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderHTML(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// AppendStepSummary appends the markdown report to the job summary file at
// path, creating it if needed.
func AppendStepSummary(path string, r *model.ScanReport) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open step summary: %w", err)
	}

	if _, err := f.WriteString(Markdown(r) + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write step summary: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close step summary: %w", err)
	}
	return nil
}

// WriteHTML writes the report as a standalone HTML page, replacing any file at path.
func WriteHTML(path string, r *model.ScanReport) error {
	title := textSanitizer.Sanitize(fmt.Sprintf("TODO scan of %s@%s", r.RepoFullName, shortSHA(r.HeadSHA)))

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	b.WriteString("</head>\n<body>\n")
	b.WriteString(RenderHTML(Markdown(r)))
	b.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}
	return nil
}

func changeMarker(c model.TodoChange) string {
	if c == model.TodoRemoved {
		return "removed"
	}
	return "added"
}

// codeSpan wraps s in a code span whose fence is longer than any backtick
// run inside s.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, c := range s {
		if c == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}

	fence := strings.Repeat("`", longest+1)
	if longest == 0 {
		return fence + escapeCell(s) + fence
	}
	return fence + " " + escapeCell(s) + " " + fence
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func shortSHA(sha string) string {
	if len(sha) > shortSHALen {
		return sha[:shortSHALen]
	}
	return sha
}
