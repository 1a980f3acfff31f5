package types

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Z]+-\d+$`)

// IssueKey is an issue tracker key such as "PROJ-123"
type IssueKey string

// Validate checks if the IssueKey is well formed. It does not check that the
// issue exists.
func (k IssueKey) Validate() error {
	if k == "" {
		return goerr.New("issue key cannot be empty")
	}
	if !issueKeyPattern.MatchString(string(k)) {
		return goerr.New("issue key must be uppercase letters, a hyphen and digits", goerr.V("key", k))
	}
	return nil
}

// Project returns the project part of the key ("PROJ" for "PROJ-123")
func (k IssueKey) Project() string {
	project, _, _ := strings.Cut(string(k), "-")
	return project
}

// String returns the string representation of IssueKey
func (k IssueKey) String() string {
	return string(k)
}
