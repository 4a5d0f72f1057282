package model

import (
	"fmt"
	"strings"
)

// Repository identifies the GitHub repository the bot runs against.
// It scopes every API call and never changes for the lifetime of a run.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository splits an "owner/repo" string into a Repository.
func ParseRepository(fullName string) (Repository, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

// FullName returns the "owner/repo" form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}
