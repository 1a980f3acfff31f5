package jira

import (
	"context"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

const (
	// DefaultTimeout bounds one issue lookup including retries of the transport
	DefaultTimeout = 10 * time.Second

	issueFields = "summary,issuetype,priority,status,assignee"
)

// client implements interfaces.IssueTracker on the Jira REST API
type client struct {
	api     *jira.Client
	baseURL string
	timeout time.Duration
	http    *http.Client
}

var _ interfaces.IssueTracker = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimeout sets the HTTP timeout of a lookup
func WithTimeout(timeout time.Duration) Option {
	return func(c *client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the authenticated HTTP client, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.http = hc
	}
}

// New creates an IssueTracker for the Jira instance at baseURL, authenticating
// with basic auth (user name and password or API token).
func New(baseURL, username, token string, opts ...Option) (interfaces.IssueTracker, error) {
	if baseURL == "" {
		return nil, goerr.New("Jira base URL is required")
	}

	c := &client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		tp := jira.BasicAuthTransport{
			Username: username,
			Password: token,
		}
		c.http = tp.Client()
	}
	c.http.Timeout = c.timeout

	api, err := jira.NewClient(c.http, baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Jira client", goerr.V("base_url", baseURL))
	}
	c.api = api

	return c, nil
}

// GetIssue fetches key and projects it onto model.Issue
func (c *client) GetIssue(ctx context.Context, key types.IssueKey) (*model.Issue, error) {
	issue, resp, err := c.api.Issue.GetWithContext(ctx, key.String(), &jira.GetQueryOptions{
		Fields: issueFields,
	})
	if err != nil {
		return nil, classifyError(err, resp, key)
	}

	browseURL, err := model.BrowseURL(c.baseURL, key)
	if err != nil {
		return nil, err
	}

	return toIssue(issue, key, browseURL), nil
}

func toIssue(issue *jira.Issue, key types.IssueKey, browseURL string) *model.Issue {
	result := &model.Issue{
		Key:       key,
		BrowseURL: browseURL,
	}
	if issue.Key != "" {
		result.Key = types.IssueKey(issue.Key)
	}

	fields := issue.Fields
	if fields == nil {
		return result
	}

	result.Summary = fields.Summary
	result.Type = fields.Type.Name
	if fields.Priority != nil {
		result.Priority = fields.Priority.Name
	}
	if fields.Status != nil {
		result.Status = fields.Status.Name
	}
	if fields.Assignee != nil {
		result.Assignee = fields.Assignee.DisplayName
	}
	return result
}
