package slack_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/atlas/pkg/domain/model/slack"
	goslack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

func TestNewMessageFromWebhook(t *testing.T) {
	valid := url.Values{
		"token":        {"secret-token"},
		"team_id":      {"T0001"},
		"team_domain":  {"example"},
		"channel_id":   {"C2147483705"},
		"channel_name": {"general"},
		"timestamp":    {"1355517523.000005"},
		"user_id":      {"U2147483697"},
		"user_name":    {"steve"},
		"text":         {"have a look at PROJ-1"},
		"trigger_word": {"PROJ"},
	}

	t.Run("all fields", func(t *testing.T) {
		msg, err := slack.NewMessageFromWebhook(valid)
		gt.NoError(t, err).Required()

		gt.Value(t, msg.Token()).Equal("secret-token")
		gt.Value(t, msg.TeamID()).Equal("T0001")
		gt.Value(t, msg.TeamDomain()).Equal("example")
		gt.Value(t, msg.ChannelID()).Equal("C2147483705")
		gt.Value(t, msg.ChannelName()).Equal("general")
		gt.Value(t, msg.UserID()).Equal("U2147483697")
		gt.Value(t, msg.UserName()).Equal("steve")
		gt.Value(t, msg.Text()).Equal("have a look at PROJ-1")
		gt.Value(t, msg.TriggerWord()).Equal("PROJ")
		gt.Value(t, msg.CreatedAt().Unix()).Equal(int64(1355517523))
		gt.Bool(t, msg.IsBot()).False()
	})

	for _, field := range []string{"token", "channel_name", "user_name", "text"} {
		t.Run("missing "+field, func(t *testing.T) {
			form := url.Values{}
			for k, v := range valid {
				form[k] = v
			}
			form.Del(field)

			_, err := slack.NewMessageFromWebhook(form)
			gt.Value(t, err).NotNil()
			gt.Bool(t, errors.Is(err, slack.ErrMissingField)).True()
		})
	}

	t.Run("optional fields may be absent", func(t *testing.T) {
		msg, err := slack.NewMessageFromWebhook(url.Values{
			"token":        {"t"},
			"channel_name": {"general"},
			"user_name":    {"steve"},
			"text":         {"hi"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, msg.ChannelID()).Equal("")
		if time.Since(msg.CreatedAt()) > time.Second {
			t.Errorf("expected CreatedAt to default to now, got %v", msg.CreatedAt())
		}
	})
}

func TestNewMessageFromCommand(t *testing.T) {
	msg := slack.NewMessageFromCommand(goslack.SlashCommand{
		Token:       "secret-token",
		ChannelID:   "C1",
		ChannelName: "random",
		UserID:      "U1",
		UserName:    "alice",
		Command:     "/jira",
		Text:        "OPS-9",
	})

	gt.NoError(t, msg.Validate()).Required()
	gt.Value(t, msg.ChannelName()).Equal("random")
	gt.Value(t, msg.TriggerWord()).Equal("/jira")
	gt.Value(t, msg.Text()).Equal("OPS-9")
}

func TestNewMessage_MessageEvent(t *testing.T) {
	ctx := context.Background()

	event := &slackevents.EventsAPIEvent{
		Type:   slackevents.CallbackEvent,
		TeamID: "T123456",
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Type: "message",
			Data: &slackevents.MessageEvent{
				Type:           "message",
				User:           "U123456",
				Text:           "PROJ-1 is broken",
				TimeStamp:      "1234567890.123456",
				Channel:        "C123456",
				EventTimeStamp: "1234567890.123456",
			},
		},
	}

	msg := slack.NewMessage(ctx, event)
	gt.Value(t, msg).NotNil().Required()

	gt.Value(t, msg.ChannelID()).Equal("C123456")
	gt.Value(t, msg.ChannelName()).Equal("C123456")
	gt.Value(t, msg.TeamID()).Equal("T123456")
	gt.Value(t, msg.UserID()).Equal("U123456")
	gt.Value(t, msg.Text()).Equal("PROJ-1 is broken")
	gt.Value(t, msg.ThreadTS()).Equal("1234567890.123456")
	gt.Bool(t, msg.IsBot()).False()

	renamed := msg.WithChannelName("general")
	gt.Value(t, renamed.ChannelName()).Equal("general")
	gt.Value(t, msg.ChannelName()).Equal("C123456")
}

func TestNewMessage_ThreadReply(t *testing.T) {
	event := &slackevents.EventsAPIEvent{
		Type: slackevents.CallbackEvent,
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Type: "message",
			Data: &slackevents.MessageEvent{
				User:            "U1",
				Text:            "PROJ-1",
				TimeStamp:       "1234567890.200000",
				ThreadTimeStamp: "1234567890.100000",
				Channel:         "C1",
			},
		},
	}

	msg := slack.NewMessage(context.Background(), event)
	gt.Value(t, msg).NotNil().Required()
	gt.Value(t, msg.ThreadTS()).Equal("1234567890.100000")
}

func TestNewMessage_BotMessage(t *testing.T) {
	event := &slackevents.EventsAPIEvent{
		Type: slackevents.CallbackEvent,
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Type: "message",
			Data: &slackevents.MessageEvent{
				SubType:   "bot_message",
				BotID:     "B1",
				Text:      "*PROJ-1:* something",
				TimeStamp: "1234567890.123456",
				Channel:   "C1",
			},
		},
	}

	msg := slack.NewMessage(context.Background(), event)
	gt.Value(t, msg).NotNil().Required()
	gt.Bool(t, msg.IsBot()).True()
}

func TestNewMessage_AppMentionEvent(t *testing.T) {
	event := &slackevents.EventsAPIEvent{
		Type:   slackevents.CallbackEvent,
		TeamID: "T1",
		InnerEvent: slackevents.EventsAPIInnerEvent{
			Type: "app_mention",
			Data: &slackevents.AppMentionEvent{
				User:      "U1",
				Text:      "<@UBOT> PROJ-2?",
				TimeStamp: "1234567890.123456",
				Channel:   "C1",
			},
		},
	}

	msg := slack.NewMessage(context.Background(), event)
	gt.Value(t, msg).NotNil().Required()
	gt.Value(t, msg.Text()).Equal("<@UBOT> PROJ-2?")
	gt.Value(t, msg.UserName()).Equal("U1")
}

func TestNewMessage_Unsupported(t *testing.T) {
	t.Run("edited message", func(t *testing.T) {
		event := &slackevents.EventsAPIEvent{
			Type: slackevents.CallbackEvent,
			InnerEvent: slackevents.EventsAPIInnerEvent{
				Type: "message",
				Data: &slackevents.MessageEvent{SubType: "message_changed", Channel: "C1"},
			},
		}
		gt.Value(t, slack.NewMessage(context.Background(), event)).Nil()
	})

	t.Run("not a callback", func(t *testing.T) {
		event := &slackevents.EventsAPIEvent{Type: slackevents.URLVerification}
		gt.Value(t, slack.NewMessage(context.Background(), event)).Nil()
	})
}
