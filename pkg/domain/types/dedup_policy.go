package types

import "github.com/m-mizutani/goerr/v2"

// DedupFailurePolicy decides how a mention is treated when the dedup store
// cannot be reached.
type DedupFailurePolicy string

const (
	// DedupFailOpen treats the mention as not seen: the lookup proceeds and a
	// duplicate reply may be posted during a store outage.
	DedupFailOpen DedupFailurePolicy = "open"

	// DedupFailClosed treats the mention as seen: no reply is posted for it
	// while the store is unavailable.
	DedupFailClosed DedupFailurePolicy = "closed"
)

// Validate checks if the DedupFailurePolicy is known
func (p DedupFailurePolicy) Validate() error {
	switch p {
	case DedupFailOpen, DedupFailClosed:
		return nil
	default:
		return goerr.New("dedup failure policy must be 'open' or 'closed'", goerr.V("policy", p))
	}
}

// String returns the string representation of DedupFailurePolicy
func (p DedupFailurePolicy) String() string {
	return string(p)
}
