package model

import "time"

// Issue represents a GitHub issue of the repository. The issues listing
// endpoint also returns pull requests; those have IsPullRequest set.
type Issue struct {
	Number        int
	Title         string
	Body          string
	State         string // "open" or "closed".
	Author        string
	URL           string
	Labels        []string
	IsPullRequest bool
	CreatedAt     time.Time
	ClosedAt      time.Time // Zero while the issue is open.
}
