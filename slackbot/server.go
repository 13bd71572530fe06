package slackbot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slack-go/slack/slackevents"
)

const (
	// eventTTL bounds how long an event id is remembered for
	// deduplication. Slack stops retrying long before this.
	eventTTL = 24 * time.Hour

	// respondTimeout bounds background answer generation.
	respondTimeout = 2 * time.Minute
)

// Server exposes the Slack Events API endpoint and dispatches app
// mentions to the chatbot.
type Server struct {
	bot    *Chatbot
	router chi.Router
	dedup  *dedupCache
	logger *slog.Logger

	// respond is swapped in tests to run synchronously.
	respond func(channel, text, ts, threadTS string)
}

// NewServer creates the HTTP surface for the given chatbot.
func NewServer(bot *Chatbot) *Server {
	s := &Server{
		bot:    bot,
		dedup:  newDedupCache(eventTTL),
		logger: slog.Default().With("component", "slackbot.server"),
	}
	s.respond = s.respondAsync

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/slack/events", s.handleEvents)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving HTTP until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleEvents acknowledges Slack immediately and answers in the
// background. Slack retries events that are not acknowledged within
// three seconds, which an LLM round-trip never fits.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read body", http.StatusBadRequest)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		s.logger.Warn("could not parse event", "error", err)
		http.Error(w, "invalid event", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "invalid challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		if callback, ok := event.Data.(*slackevents.EventsAPICallbackEvent); ok {
			if s.dedup.Seen(callback.EventID) {
				s.logger.Debug("duplicate event dropped", "event_id", callback.EventID)
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		if mention, ok := event.InnerEvent.Data.(*slackevents.AppMentionEvent); ok {
			s.respond(mention.Channel, mention.Text, mention.TimeStamp, mention.ThreadTimeStamp)
		}
		w.WriteHeader(http.StatusOK)

	default:
		http.Error(w, "unsupported event type", http.StatusBadRequest)
	}
}

func (s *Server) respondAsync(channel, text, ts, threadTS string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), respondTimeout)
		defer cancel()

		if err := s.bot.Respond(ctx, channel, text, ts, threadTS); err != nil {
			s.logger.Error("could not answer mention", "channel", channel, "error", err)
		}
	}()
}
