package slack

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// ErrMissingField is returned when a required inbound field is empty
var ErrMissingField = goerr.New("required field is missing")

// Message is an inbound chat message, whichever Slack surface delivered it
type Message struct {
	token       string
	teamID      string
	teamDomain  string
	channelID   string
	channelName string
	threadTS    string
	userID      string
	userName    string
	text        string
	timestamp   string
	triggerWord string
	isBot       bool
	createdAt   time.Time
}

// NewMessageFromWebhook creates a Message from the form fields of a Slack
// outgoing webhook. token, channel_name, user_name and text are required.
func NewMessageFromWebhook(form url.Values) (*Message, error) {
	msg := &Message{
		token:       form.Get("token"),
		teamID:      form.Get("team_id"),
		teamDomain:  form.Get("team_domain"),
		channelID:   form.Get("channel_id"),
		channelName: form.Get("channel_name"),
		userID:      form.Get("user_id"),
		userName:    form.Get("user_name"),
		text:        form.Get("text"),
		timestamp:   form.Get("timestamp"),
		triggerWord: form.Get("trigger_word"),
		createdAt:   parseTimestamp(form.Get("timestamp")),
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

// NewMessageFromCommand creates a Message from a slash command invocation
func NewMessageFromCommand(cmd slack.SlashCommand) *Message {
	return &Message{
		token:       cmd.Token,
		teamID:      cmd.TeamID,
		teamDomain:  cmd.TeamDomain,
		channelID:   cmd.ChannelID,
		channelName: cmd.ChannelName,
		userID:      cmd.UserID,
		userName:    cmd.UserName,
		text:        cmd.Text,
		triggerWord: cmd.Command,
		createdAt:   time.Now(),
	}
}

// NewMessage creates a Message from a Slack Events API event. Events carry no
// channel name, so the channel ID is used until WithChannelName is applied.
// Unsupported events return nil.
func NewMessage(ctx context.Context, ev *slackevents.EventsAPIEvent) *Message {
	if ev.Type != slackevents.CallbackEvent {
		return nil
	}

	switch evt := ev.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		return &Message{
			teamID:      ev.TeamID,
			channelID:   evt.Channel,
			channelName: evt.Channel,
			threadTS:    threadOf(evt.ThreadTimeStamp, evt.TimeStamp),
			userID:      evt.User,
			userName:    evt.User,
			text:        evt.Text,
			timestamp:   evt.TimeStamp,
			isBot:       evt.BotID != "",
			createdAt:   parseTimestamp(evt.TimeStamp),
		}

	case *slackevents.MessageEvent:
		// Edits, deletions and other subtypes are not new mentions
		if evt.SubType != "" && evt.SubType != "bot_message" && evt.SubType != "thread_broadcast" {
			return nil
		}
		return &Message{
			teamID:      ev.TeamID,
			channelID:   evt.Channel,
			channelName: evt.Channel,
			threadTS:    threadOf(evt.ThreadTimeStamp, evt.TimeStamp),
			userID:      evt.User,
			userName:    firstNonEmpty(evt.Username, evt.User),
			text:        evt.Text,
			timestamp:   evt.TimeStamp,
			isBot:       evt.BotID != "" || evt.SubType == "bot_message",
			createdAt:   parseTimestamp(evt.TimeStamp),
		}

	default:
		return nil
	}
}

// NewMessageFromData creates a Message from raw values
func NewMessageFromData(token, channelID, channelName, userID, userName, text string) *Message {
	return &Message{
		token:       token,
		channelID:   channelID,
		channelName: channelName,
		userID:      userID,
		userName:    userName,
		text:        text,
		createdAt:   time.Now(),
	}
}

// Validate checks the fields every surface must provide
func (m *Message) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"token", m.token},
		{"channel_name", m.channelName},
		{"user_name", m.userName},
		{"text", m.text},
	}
	for _, f := range required {
		if f.value == "" {
			return goerr.Wrap(ErrMissingField, "invalid inbound message", goerr.V("field", f.name))
		}
	}
	return nil
}

// WithChannelName returns a copy of m with the channel display name replaced
func (m *Message) WithChannelName(name string) *Message {
	copied := *m
	copied.channelName = name
	return &copied
}

func (m *Message) Token() string       { return m.token }
func (m *Message) TeamID() string      { return m.teamID }
func (m *Message) TeamDomain() string  { return m.teamDomain }
func (m *Message) ChannelID() string   { return m.channelID }
func (m *Message) ChannelName() string { return m.channelName }
func (m *Message) ThreadTS() string    { return m.threadTS }
func (m *Message) UserID() string      { return m.userID }
func (m *Message) UserName() string    { return m.userName }
func (m *Message) Text() string        { return m.text }
func (m *Message) Timestamp() string   { return m.timestamp }
func (m *Message) TriggerWord() string { return m.triggerWord }
func (m *Message) IsBot() bool         { return m.isBot }
func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

// threadOf returns the thread a reply should go to: the existing thread, or a
// new thread rooted at the message itself.
func threadOf(threadTS, ts string) string {
	if threadTS != "" {
		return threadTS
	}
	return ts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseTimestamp(ts string) time.Time {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil || f <= 0 {
		return time.Now()
	}
	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*1e9))
}
