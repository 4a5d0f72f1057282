package model

// Todo is a TODO marker found on a changed line of a diff.
type Todo struct {
	File   string
	Line   int // New-file line for added markers, old-file line for removed ones.
	Title  string
	Change TodoChange
}
