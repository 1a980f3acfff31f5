package interfaces

import "context"

// ChatPoster delivers replies for messages that arrived through the Events API,
// where the HTTP response cannot carry the reply.
type ChatPoster interface {
	// PostThreadReply posts text to channelID, in the thread rooted at threadTS
	// when it is not empty
	PostThreadReply(ctx context.Context, channelID, threadTS, text string) error

	// GetChannelNames resolves channel IDs to display names. IDs that cannot
	// be resolved are absent from the result.
	GetChannelNames(ctx context.Context, ids []string) (map[string]string, error)
}
