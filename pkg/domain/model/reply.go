package model

import "strings"

// DefaultReplySeparator separates issue blocks in one reply
const DefaultReplySeparator = "\n\n"

// Reply is the aggregated answer to one inbound message
type Reply struct {
	Blocks    []string
	Separator string
}

// IsEmpty returns true when there is nothing new to report
func (x *Reply) IsEmpty() bool {
	return x == nil || len(x.Blocks) == 0
}

// Text joins all blocks with the separator
func (x *Reply) Text() string {
	if x.IsEmpty() {
		return ""
	}
	sep := x.Separator
	if sep == "" {
		sep = DefaultReplySeparator
	}
	return strings.Join(x.Blocks, sep)
}
