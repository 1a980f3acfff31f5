package model

import (
	"iter"
	"net/url"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

var issueKeyInText = regexp.MustCompile(`[A-Z]+-\d+`)

// ExtractIssueKeys yields every substring of text that looks like an issue key,
// left to right and including repeats. The sequence is lazy and can be ranged
// over any number of times.
func ExtractIssueKeys(text string) iter.Seq[types.IssueKey] {
	return func(yield func(types.IssueKey) bool) {
		rest := text
		for rest != "" {
			loc := issueKeyInText.FindStringIndex(rest)
			if loc == nil {
				return
			}
			if !yield(types.IssueKey(rest[loc[0]:loc[1]])) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}

// Issue is a read-only projection of an issue held by the tracker
type Issue struct {
	Key       types.IssueKey
	Summary   string
	Type      string
	Priority  string
	Status    string
	Assignee  string // display name, empty when unassigned
	BrowseURL string
}

// BrowseURL builds the absolute URL of key on a tracker served at baseURL
func BrowseURL(baseURL string, key types.IssueKey) (string, error) {
	u, err := url.JoinPath(baseURL, "browse", key.String())
	if err != nil {
		return "", goerr.Wrap(err, "failed to build browse URL", goerr.V("base_url", baseURL), goerr.V("key", key))
	}
	return u, nil
}

// Format renders the issue as a Slack mrkdwn block:
//
//	*KEY:* Summary
//	`Type` - `Priority` - `Status`
//	Assigned to: Name
//	https://tracker/browse/KEY
func (x *Issue) Format() string {
	var b strings.Builder

	b.WriteString("*" + x.Key.String() + ":* " + x.Summary + "\n")

	var tokens []string
	for _, v := range []string{x.Type, x.Priority, x.Status} {
		if v != "" {
			tokens = append(tokens, "`"+v+"`")
		}
	}
	if len(tokens) > 0 {
		b.WriteString(strings.Join(tokens, " - ") + "\n")
	}

	if x.Assignee != "" {
		b.WriteString("Assigned to: " + x.Assignee + "\n")
	}

	b.WriteString(x.BrowseURL)

	return strings.TrimRight(b.String(), " \t\r\n")
}
