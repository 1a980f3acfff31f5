package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/types"
)

var errBoom = errors.New("boom")

type mockTracker struct {
	mu     sync.Mutex
	issues map[types.IssueKey]*model.Issue
	errs   map[types.IssueKey]error
	calls  []types.IssueKey
}

func newMockTracker(issues ...*model.Issue) *mockTracker {
	m := &mockTracker{
		issues: make(map[types.IssueKey]*model.Issue),
		errs:   make(map[types.IssueKey]error),
	}
	for _, issue := range issues {
		m.issues[issue.Key] = issue
	}
	return m
}

func (m *mockTracker) GetIssue(ctx context.Context, key types.IssueKey) (*model.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, key)

	if err, ok := m.errs[key]; ok {
		return nil, err
	}
	if issue, ok := m.issues[key]; ok {
		return issue, nil
	}
	return nil, interfaces.ErrIssueNotFound
}

func (m *mockTracker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var _ interfaces.IssueTracker = &mockTracker{}

type failingSeenRepository struct{}

func (failingSeenRepository) Put(ctx context.Context, record *model.SeenRecord) error {
	return errBoom
}

func (failingSeenRepository) Get(ctx context.Context, key model.SeenKey) (*model.SeenRecord, error) {
	return nil, errBoom
}

func (failingSeenRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	return 0, errBoom
}

var _ interfaces.SeenRepository = failingSeenRepository{}

type postedReply struct {
	channelID string
	threadTS  string
	text      string
}

type mockChat struct {
	mu      sync.Mutex
	names   map[string]string
	posted  []postedReply
	postErr error
}

func (m *mockChat) PostThreadReply(ctx context.Context, channelID, threadTS, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return m.postErr
	}
	m.posted = append(m.posted, postedReply{channelID: channelID, threadTS: threadTS, text: text})
	return nil
}

func (m *mockChat) GetChannelNames(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, id := range ids {
		if name, ok := m.names[id]; ok {
			result[id] = name
		}
	}
	return result, nil
}

var _ interfaces.ChatPoster = &mockChat{}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testIssue(key string) *model.Issue {
	return &model.Issue{
		Key:       types.IssueKey(key),
		Summary:   "Summary of " + key,
		Type:      "Bug",
		Priority:  "Major",
		Status:    "Open",
		BrowseURL: "https://jira.example.com/browse/" + key,
	}
}
