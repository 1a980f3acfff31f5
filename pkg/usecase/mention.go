package usecase

import (
	"context"
	"errors"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/model/slack"
	"github.com/secmon-lab/atlas/pkg/domain/types"
	"github.com/secmon-lab/atlas/pkg/utils/errutil"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
	"golang.org/x/sync/errgroup"
)

// HandleWebhook answers a message delivered by an outgoing webhook or a slash
// command. It fails only when the token is not allowed.
func (uc *UseCases) HandleWebhook(ctx context.Context, msg *slack.Message) (*model.Reply, error) {
	if err := uc.auth.Verify(msg.Token()); err != nil {
		return nil, goerr.Wrap(err, "rejected inbound message",
			goerr.V(UserKey, msg.UserName()),
			goerr.V(ChannelKey, msg.ChannelName()),
		)
	}

	return uc.Respond(ctx, msg), nil
}

// HandleSlackEvent answers a message delivered by the Events API by posting
// the reply into the message's thread
func (uc *UseCases) HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	logger := logging.From(ctx)

	msg := slack.NewMessage(ctx, event)
	if msg == nil {
		logger.Debug("unsupported slack event type", "type", event.Type, "innerType", event.InnerEvent.Type)
		return nil
	}

	if uc.chat == nil {
		return goerr.New("chat poster is not configured", goerr.V(ChannelKey, msg.ChannelID()))
	}

	if !uc.events.claim(msg.ChannelID(), msg.Timestamp(), uc.now()) {
		logger.Debug("slack message already handled", "channel_id", msg.ChannelID(), "ts", msg.Timestamp())
		return nil
	}

	names, err := uc.chat.GetChannelNames(ctx, []string{msg.ChannelID()})
	if err != nil {
		errutil.Handle(ctx, err, "failed to resolve channel name")
	} else if name, ok := names[msg.ChannelID()]; ok {
		msg = msg.WithChannelName(name)
	}

	reply := uc.Respond(ctx, msg)
	if reply.IsEmpty() {
		return nil
	}

	if err := uc.chat.PostThreadReply(ctx, msg.ChannelID(), msg.ThreadTS(), reply.Text()); err != nil {
		return goerr.Wrap(err, "failed to post reply",
			goerr.V(UserKey, msg.UserName()),
			goerr.V(ChannelKey, msg.ChannelName()),
		)
	}
	return nil
}

// Respond extracts issue keys from msg and builds a reply describing those not
// reported in the channel recently. Lookup failures drop only the affected key.
func (uc *UseCases) Respond(ctx context.Context, msg *slack.Message) *model.Reply {
	reply := &model.Reply{Separator: uc.separator}

	if uc.isSelf(msg) {
		return reply
	}

	keys := uc.candidates(msg.Text())
	if len(keys) == 0 {
		return reply
	}

	channel := msg.ChannelName()
	logger := logging.From(ctx).With(UserKey, msg.UserName(), ChannelKey, channel)
	logger.Info("Message contained issue key(s)",
		"keys", keys,
		"team", msg.TeamDomain(),
		"trigger_word", msg.TriggerWord(),
		"posted_at", msg.CreatedAt(),
	)

	blocks := make([]string, len(keys))
	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, key := range keys {
		eg.Go(func() error {
			blocks[i] = uc.describe(ctx, msg.UserName(), channel, key)
			return nil
		})
	}
	_ = eg.Wait()

	for _, b := range blocks {
		if b != "" {
			reply.Blocks = append(reply.Blocks, b)
		}
	}
	return reply
}

// Lookup runs the reply pipeline for text posted by user in channel
func (uc *UseCases) Lookup(ctx context.Context, channel, user, text string) *model.Reply {
	return uc.Respond(ctx, slack.NewMessageFromData("", channel, channel, "", user, text))
}

func (uc *UseCases) isSelf(msg *slack.Message) bool {
	if msg.IsBot() {
		return true
	}
	if uc.botName != "" && msg.UserName() == uc.botName {
		return true
	}
	return uc.botUserID != "" && msg.UserID() == uc.botUserID
}

// candidates returns the distinct keys of text in order of first appearance,
// without ignored keys and keys of disallowed projects
func (uc *UseCases) candidates(text string) []types.IssueKey {
	var keys []types.IssueKey
	for key := range model.ExtractIssueKeys(text) {
		if _, ignored := uc.ignoreKeys[key]; ignored {
			continue
		}
		if uc.projects != nil {
			if _, ok := uc.projects[key.Project()]; !ok {
				continue
			}
		}
		if slices.Contains(keys, key) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// describe returns the formatted block for key, or "" when it must be skipped
func (uc *UseCases) describe(ctx context.Context, user, channel string, key types.IssueKey) string {
	logger := logging.From(ctx).With(UserKey, user, ChannelKey, channel, IssueKeyKey, key)

	if seenAt, ok := uc.dedup.WasSeen(ctx, channel, key, uc.now()); ok {
		logger.Debug("issue reported recently, skipping", "seen_at", seenAt)
		return ""
	}

	issue, err := uc.tracker.GetIssue(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrIssueNotFound) {
			logger.Warn("issue not found")
			return ""
		}
		errutil.Handle(logging.With(ctx, logger), err, "failed to look up issue")
		return ""
	}

	block := issue.Format()

	if err := uc.dedup.MarkSeen(ctx, channel, key, uc.now()); err != nil {
		errutil.Handle(logging.With(ctx, logger), err, "failed to record reported issue")
	}

	return block
}
