package model

// Commit carries the commit metadata needed to decide whether to diff it.
type Commit struct {
	SHA        string
	ParentSHAs []string
}

// IsMerge returns true when the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.ParentSHAs) > 1
}
