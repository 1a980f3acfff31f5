package interfaces

import (
	"context"
	"errors"

	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

// ErrIssueNotFound is wrapped by IssueTracker errors when the key does not
// resolve to an issue
var ErrIssueNotFound = errors.New("issue not found")

// IssueTracker reads issues from the system of record
type IssueTracker interface {
	// GetIssue fetches the issue identified by key. A key that does not exist
	// yields an error wrapping ErrIssueNotFound.
	GetIssue(ctx context.Context, key types.IssueKey) (*model.Issue, error)
}
