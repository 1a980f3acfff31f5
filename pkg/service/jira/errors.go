package jira

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

// Error is a failed Jira request. StatusCode is 0 when no response was
// received (network failure, timeout).
type Error struct {
	StatusCode int
	Message    string
	err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return "jira request failed: " + e.Message
	}
	return fmt.Sprintf("jira request failed with status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

// IsNotFound reports whether the issue does not exist (or is not visible to
// the configured account, which Jira reports the same way)
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func classifyError(err error, resp *jira.Response, key types.IssueKey) error {
	jerr := &Error{
		Message: errorMessage(err),
		err:     err,
	}
	if resp != nil && resp.Response != nil {
		jerr.StatusCode = resp.StatusCode
	}

	if jerr.IsNotFound() {
		jerr.err = errors.Join(interfaces.ErrIssueNotFound, err)
		return goerr.Wrap(jerr, "issue not found", goerr.V("key", key), goerr.V("status", jerr.StatusCode))
	}
	return goerr.Wrap(jerr, "failed to get issue", goerr.V("key", key), goerr.V("status", jerr.StatusCode))
}

// errorMessage prefers the messages Jira put in the response body over the
// generic transport error
func errorMessage(err error) string {
	var apiErr *jira.Error
	if errors.As(err, &apiErr) {
		msgs := append([]string{}, apiErr.ErrorMessages...)
		for field, msg := range apiErr.Errors {
			msgs = append(msgs, field+": "+msg)
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return err.Error()
}
