package model

import "time"

// ScanRun is the ledger entry persisted for one run of the bot.
type ScanRun struct {
	ID           int64
	RepoFullName string
	HeadSHA      string
	Status       ScanStatus
	Reason       string // Why the run was skipped; empty for completed scans.
	DiffBytes    int
	TodoCount    int
	IssueCount   int
	ScannedAt    time.Time
}

// ScanReport is the transient result of a run, consumed by the report writers.
// It is never persisted as-is; ScanRun is its stored summary.
type ScanReport struct {
	RepoFullName   string
	HeadSHA        string
	Status         ScanStatus
	Reason         string
	Todos          []Todo
	Labels         []string
	Author         string // Empty when the push author has no GitHub handle.
	ExistingIssues int
	DiffBytes      int
}

// AddedTodos returns only the markers introduced by the diff.
func (r ScanReport) AddedTodos() []Todo {
	var added []Todo
	for _, t := range r.Todos {
		if t.Change == TodoAdded {
			added = append(added, t)
		}
	}
	return added
}
