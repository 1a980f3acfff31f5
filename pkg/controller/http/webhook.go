package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/model/slack"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/secmon-lab/atlas/pkg/utils/errutil"
	"github.com/secmon-lab/atlas/pkg/utils/safe"
	goslack "github.com/slack-go/slack"
)

// webhookResponse is the body Slack posts back to the channel of an outgoing webhook
type webhookResponse struct {
	Text string `json:"text"`
}

// outgoingWebhookHandler serves Slack outgoing webhooks. The reply is carried
// in the response body; an empty body means nothing to say.
func outgoingWebhookHandler(uc MentionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseForm(); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse webhook form"), http.StatusBadRequest)
			return
		}

		msg, err := slack.NewMessageFromWebhook(r.PostForm)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}

		reply, err := uc.HandleWebhook(ctx, msg)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, statusOf(err))
			return
		}

		if reply.IsEmpty() {
			w.WriteHeader(http.StatusOK)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, webhookResponse{Text: reply.Text()})
	}
}

// slashCommandHandler serves a Slack slash command such as /jira PROJ-1
func slashCommandHandler(uc MentionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cmd, err := goslack.SlashCommandParse(r)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slash command"), http.StatusBadRequest)
			return
		}

		msg := slack.NewMessageFromCommand(cmd)
		if strings.TrimSpace(cmd.Text) == "" {
			// Token is still checked before answering with usage
			if _, err := uc.HandleWebhook(ctx, msg); err != nil {
				errutil.HandleHTTP(ctx, w, err, statusOf(err))
				return
			}
			safe.WriteJSON(ctx, w, http.StatusOK, goslack.Msg{
				ResponseType: goslack.ResponseTypeEphemeral,
				Text:         fmt.Sprintf("Usage: %s PROJ-123 [OPS-45 ...]", cmd.Command),
			})
			return
		}

		reply, err := uc.HandleWebhook(ctx, msg)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, statusOf(err))
			return
		}

		if reply.IsEmpty() {
			w.WriteHeader(http.StatusOK)
			return
		}
		safe.WriteJSON(ctx, w, http.StatusOK, goslack.Msg{
			ResponseType: goslack.ResponseTypeInChannel,
			Text:         reply.Text(),
		})
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, slack.ErrMissingField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
