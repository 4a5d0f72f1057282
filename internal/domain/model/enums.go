package model

// LabelMode selects how issue labels are resolved for a run.
type LabelMode string

const (
	LabelModeNone     LabelMode = "none"     // Labeling disabled.
	LabelModeDefault  LabelMode = "default"  // Use the bot's default label, created on demand.
	LabelModeExplicit LabelMode = "explicit" // Use the configured label names verbatim.
)

// TodoChange tells whether a TODO marker was added or removed by a diff.
type TodoChange string

const (
	TodoAdded   TodoChange = "added"
	TodoRemoved TodoChange = "removed"
)

// ScanStatus is the outcome of a single scan run.
type ScanStatus string

const (
	ScanStatusScanned ScanStatus = "scanned"
	ScanStatusSkipped ScanStatus = "skipped"
)
