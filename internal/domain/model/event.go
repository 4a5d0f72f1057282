package model

// TriggerPayload is the part of the push event that triggered the run which
// the bot reads. A non-empty Commits list means a push of one or more commits
// that is diffed as a before...after range; an empty list with a HeadCommit is
// treated as a single pushed commit. The upstream event format carries no
// explicit discriminant, so this shape-based inference is the contract.
type TriggerPayload struct {
	Commits    []PushCommit
	Before     string
	HeadCommit *HeadCommit
}

// PushCommit is one entry of the push event's commit list.
type PushCommit struct {
	ID      string
	Message string
}

// HeadCommit is the most recent commit of the push.
type HeadCommit struct {
	ID     string
	Author *CommitAuthor // nil when the event carries no author.
}

// CommitAuthor is the git author of a commit. Username is the GitHub handle
// and is empty when the author email is not linked to an account.
type CommitAuthor struct {
	Name     string
	Email    string
	Username string
}

// HasCommits reports whether the payload lists at least one pushed commit.
func (p TriggerPayload) HasCommits() bool {
	return len(p.Commits) > 0
}
