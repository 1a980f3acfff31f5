package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/atlas/pkg/domain/model"
	"github.com/secmon-lab/atlas/pkg/domain/model/slack"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
	"github.com/secmon-lab/atlas/pkg/utils/safe"
	"github.com/slack-go/slack/slackevents"
)

// MentionUseCase answers chat messages that mention issue keys
type MentionUseCase interface {
	HandleWebhook(ctx context.Context, msg *slack.Message) (*model.Reply, error)
	HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error
}

type Server struct {
	router             *chi.Mux
	mentionUC          MentionUseCase
	slackSigningSecret string
}

type Options func(*Server)

// WithSlackEvents enables the Events API endpoint, verified with signingSecret
func WithSlackEvents(signingSecret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = signingSecret
	}
}

func New(mentionUC MentionUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		mentionUC: mentionUC,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/hooks/slack", func(r chi.Router) {
		// Token verified by the use case
		r.Post("/outgoing", outgoingWebhookHandler(s.mentionUC))
		r.Post("/command", slashCommandHandler(s.mentionUC))

		// Events API uses signature verification instead of a token
		if s.slackSigningSecret != "" {
			r.With(SlackSignatureMiddleware(s.slackSigningSecret)).
				Post("/event", NewSlackWebhookHandler(s.mentionUC).ServeHTTP)
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	safe.WriteJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
