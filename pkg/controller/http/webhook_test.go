package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/atlas/pkg/controller/http"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/model/slack"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/slack-go/slack/slackevents"
)

type mockMentionUseCase struct {
	mu       sync.Mutex
	messages []*slack.Message
	reply    *model.Reply
	err      error
	events   chan *slackevents.EventsAPIEvent
}

func newMockMentionUseCase() *mockMentionUseCase {
	return &mockMentionUseCase{events: make(chan *slackevents.EventsAPIEvent, 1)}
}

func (m *mockMentionUseCase) HandleWebhook(ctx context.Context, msg *slack.Message) (*model.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if m.err != nil {
		return nil, m.err
	}
	if m.reply == nil {
		return &model.Reply{}, nil
	}
	return m.reply, nil
}

func (m *mockMentionUseCase) HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	m.events <- event
	return nil
}

var _ httpctrl.MentionUseCase = &mockMentionUseCase{}

func webhookForm() url.Values {
	return url.Values{
		"token":        {"secret-token"},
		"team_id":      {"T0001"},
		"team_domain":  {"example"},
		"channel_id":   {"C2147483705"},
		"channel_name": {"general"},
		"timestamp":    {"1355517523.000005"},
		"user_id":      {"U2147483697"},
		"user_name":    {"steve"},
		"text":         {"see PROJ-1"},
		"trigger_word": {"PROJ"},
	}
}

func postForm(srv http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestOutgoingWebhook(t *testing.T) {
	const path = "/hooks/slack/outgoing"

	t.Run("replies with text", func(t *testing.T) {
		uc := newMockMentionUseCase()
		uc.reply = &model.Reply{Blocks: []string{"*PROJ-1:* one", "*PROJ-2:* two"}}
		srv := httpctrl.New(uc)

		rec := postForm(srv, path, webhookForm())
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			Text string `json:"text"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.Text).Equal("*PROJ-1:* one\n\n*PROJ-2:* two")

		gt.Array(t, uc.messages).Length(1).Required()
		gt.Value(t, uc.messages[0].Token()).Equal("secret-token")
		gt.Value(t, uc.messages[0].ChannelName()).Equal("general")
		gt.Value(t, uc.messages[0].UserName()).Equal("steve")
		gt.Value(t, uc.messages[0].TriggerWord()).Equal("PROJ")
	})

	t.Run("empty reply has empty body", func(t *testing.T) {
		srv := httpctrl.New(newMockMentionUseCase())

		rec := postForm(srv, path, webhookForm())
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Body.Len()).Equal(0)
	})

	t.Run("missing required field", func(t *testing.T) {
		for _, field := range []string{"token", "channel_name", "user_name", "text"} {
			t.Run(field, func(t *testing.T) {
				uc := newMockMentionUseCase()
				srv := httpctrl.New(uc)

				form := webhookForm()
				form.Del(field)
				rec := postForm(srv, path, form)

				gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
				gt.Array(t, uc.messages).Length(0)
			})
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		uc := newMockMentionUseCase()
		uc.err = goerr.Wrap(usecase.ErrInvalidToken, "token is not allowed")
		srv := httpctrl.New(uc)

		rec := postForm(srv, path, webhookForm())
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Bool(t, strings.Contains(rec.Body.String(), "token is not allowed")).False()
	})

	t.Run("unexpected error", func(t *testing.T) {
		uc := newMockMentionUseCase()
		uc.err = goerr.New("database on fire")
		srv := httpctrl.New(uc)

		rec := postForm(srv, path, webhookForm())
		gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
		gt.Bool(t, strings.Contains(rec.Body.String(), "database on fire")).False()
	})
}

func commandForm(text string) url.Values {
	return url.Values{
		"token":        {"secret-token"},
		"team_id":      {"T0001"},
		"team_domain":  {"example"},
		"channel_id":   {"C2147483705"},
		"channel_name": {"general"},
		"user_id":      {"U2147483697"},
		"user_name":    {"steve"},
		"command":      {"/jira"},
		"text":         {text},
		"response_url": {"https://hooks.slack.com/commands/1234/5678"},
		"trigger_id":   {"13345224609.738474920.8088930838d88f008e0"},
	}
}

func TestSlashCommand(t *testing.T) {
	const path = "/hooks/slack/command"

	type response struct {
		ResponseType string `json:"response_type"`
		Text         string `json:"text"`
	}

	t.Run("replies in channel", func(t *testing.T) {
		uc := newMockMentionUseCase()
		uc.reply = &model.Reply{Blocks: []string{"*PROJ-1:* one"}}
		srv := httpctrl.New(uc)

		rec := postForm(srv, path, commandForm("PROJ-1"))
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp response
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.ResponseType).Equal("in_channel")
		gt.Value(t, resp.Text).Equal("*PROJ-1:* one")

		gt.Array(t, uc.messages).Length(1).Required()
		gt.Value(t, uc.messages[0].TriggerWord()).Equal("/jira")
		gt.Value(t, uc.messages[0].Text()).Equal("PROJ-1")
	})

	t.Run("empty text answers usage", func(t *testing.T) {
		srv := httpctrl.New(newMockMentionUseCase())

		rec := postForm(srv, path, commandForm(" "))
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var resp response
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.ResponseType).Equal("ephemeral")
		gt.String(t, resp.Text).Contains("/jira")
	})

	t.Run("invalid token", func(t *testing.T) {
		uc := newMockMentionUseCase()
		uc.err = goerr.Wrap(usecase.ErrInvalidToken, "token is not allowed")
		srv := httpctrl.New(uc)

		rec := postForm(srv, path, commandForm("PROJ-1"))
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("nothing new", func(t *testing.T) {
		srv := httpctrl.New(newMockMentionUseCase())

		rec := postForm(srv, path, commandForm("PROJ-1"))
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Body.Len()).Equal(0)
	})
}

func TestHealth(t *testing.T) {
	srv := httpctrl.New(newMockMentionUseCase())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.String(t, rec.Body.String()).Contains(`"ok"`)
}
