package async

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/utils/errutil"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine with a context detached from the
// inbound request. The logger and request ID of ctx are carried over so log
// lines of the background work can be correlated with the request.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		bgCtx = context.WithValue(bgCtx, middleware.RequestIDKey, reqID)
		bgCtx = logging.With(bgCtx, logging.From(bgCtx).With("request_id", reqID))
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", fmt.Sprint(r))), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}
