// Package todo finds TODO markers on the changed lines of a unified diff.
package todo

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/XargsUK/todo-issue/internal/domain/model"
)

const devNull = "/dev/null"

var (
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
	// An optional "(owner)" and colon may follow the marker.
	markerRe = regexp.MustCompile(`\bTODO\b(?:\([^)]*\))?\s*:?\s*(.*)$`)
)

// commentClosers are stripped from the end of a TODO title.
var commentClosers = []string{"*/", "-->", "#}", "%>", "}}"}

// Scan returns the TODO markers on added and removed lines of diff, in diff
// order. Lines whose marker carries no title text are ignored.
func Scan(diff string) []model.Todo {
	var (
		todos            []model.Todo
		oldPath, newPath string
		oldLine, newLine int
		oldLeft, newLeft int
	)

	// Lines can be arbitrarily long (minified or generated files).
	r := bufio.NewReader(strings.NewReader(diff))

	for {
		raw, err := r.ReadString('\n')
		if raw == "" && err != nil {
			break
		}
		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		inHunk := oldLeft > 0 || newLeft > 0

		if !inHunk {
			switch {
			case strings.HasPrefix(line, "diff --git "):
				oldPath, newPath = parseGitHeader(line)
			case strings.HasPrefix(line, "--- "):
				oldPath = stripPrefix(strings.TrimPrefix(line, "--- "))
			case strings.HasPrefix(line, "+++ "):
				newPath = stripPrefix(strings.TrimPrefix(line, "+++ "))
			case strings.HasPrefix(line, "@@"):
				if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
					oldLine, oldLeft = atoi(m[1]), count(m[2])
					newLine, newLeft = atoi(m[3]), count(m[4])
				}
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "\\"):
			// "\ No newline at end of file"
		case strings.HasPrefix(line, "+"):
			if t, ok := match(line[1:]); ok {
				todos = append(todos, model.Todo{File: newPath, Line: newLine, Title: t, Change: model.TodoAdded})
			}
			newLine++
			newLeft--
		case strings.HasPrefix(line, "-"):
			if t, ok := match(line[1:]); ok {
				todos = append(todos, model.Todo{File: oldPath, Line: oldLine, Title: t, Change: model.TodoRemoved})
			}
			oldLine++
			oldLeft--
		default:
			oldLine++
			newLine++
			oldLeft--
			newLeft--
		}
	}

	return todos
}

// match extracts the TODO title from a source line.
func match(content string) (string, bool) {
	m := markerRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}

	title := strings.TrimSpace(m[1])
	for _, closer := range commentClosers {
		title = strings.TrimSpace(strings.TrimSuffix(title, closer))
	}
	if title == "" {
		return "", false
	}
	return title, true
}

// parseGitHeader reads "diff --git a/old b/new". It is a fallback for diffs
// without ---/+++ lines, such as pure renames and binary files.
func parseGitHeader(line string) (string, string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	idx := strings.Index(rest, " b/")
	if idx < 0 {
		return "", ""
	}
	return stripPrefix(rest[:idx]), stripPrefix(rest[idx+1:])
}

func stripPrefix(path string) string {
	// Timestamps may follow the path after a tab.
	if i := strings.IndexByte(path, '\t'); i >= 0 {
		path = path[:i]
	}
	if path == devNull {
		return path
	}
	if strings.HasPrefix(path, "a/") || strings.HasPrefix(path, "b/") {
		return path[2:]
	}
	return path
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// count parses an optional hunk range length, which defaults to 1.
func count(s string) int {
	if s == "" {
		return 1
	}
	return atoi(s)
}
