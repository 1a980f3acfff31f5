package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrInvalidToken is returned when an inbound request carries a token that
	// is not in the allow-list
	ErrInvalidToken = errors.New("invalid verification token")
)

// Context keys for error values and log attributes
const (
	UserKey     = "user"
	ChannelKey  = "channel"
	IssueKeyKey = "issue_key"
)
