// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package slackbot

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/lorecraft/ai"
	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/keywords"
	"github.com/poiesic/lorecraft/slack"
	"github.com/poiesic/lorecraft/storage"
	"github.com/poiesic/lorecraft/vectorstore"
)

const (
	defaultMatchCount = 5

	defaultSystemPrompt = "You are a helpful assistant answering questions" +
		" about a software project. Answer using only the provided document" +
		" excerpts and the conversation so far. Cite the excerpt links when" +
		" they support your answer. If the excerpts do not cover the" +
		" question, say so instead of guessing. Your answers are shown in" +
		" Slack, so keep them short and do not preface code blocks with a" +
		" language name."
)

var mentionPattern = regexp.MustCompile(`<@(\w+)>`)

// Messenger is the Slack surface the chatbot needs. *slack.Client
// implements it.
type Messenger interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
	ThreadMessages(ctx context.Context, channel, threadTS string) ([]slack.Message, error)
}

// Chatbot answers mentions by retrieving relevant excerpts from the
// vector store and asking the completion model.
type Chatbot struct {
	messenger  Messenger
	store      vectorstore.Store
	completer  ai.Completer
	extractor  keywords.Extractor
	metrics    storage.MetricsRepository
	botUserId  string
	matchCount int
	logger     *slog.Logger
}

// ChatbotOption customizes a Chatbot.
type ChatbotOption func(*Chatbot)

// WithMatchCount sets how many excerpts are retrieved per question.
func WithMatchCount(n int) ChatbotOption {
	return func(b *Chatbot) { b.matchCount = n }
}

// WithMetrics enables question-metrics recording.
func WithMetrics(extractor keywords.Extractor, metrics storage.MetricsRepository) ChatbotOption {
	return func(b *Chatbot) {
		b.extractor = extractor
		b.metrics = metrics
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) ChatbotOption {
	return func(b *Chatbot) { b.logger = logger }
}

// NewChatbot creates a chatbot that answers as botUserId.
func NewChatbot(messenger Messenger, store vectorstore.Store, completer ai.Completer, botUserId string, opts ...ChatbotOption) *Chatbot {
	bot := &Chatbot{
		messenger:  messenger,
		store:      store,
		completer:  completer,
		botUserId:  botUserId,
		matchCount: defaultMatchCount,
		logger:     slog.Default().With("component", "slackbot"),
	}
	for _, opt := range opts {
		opt(bot)
	}
	return bot
}

// Respond answers a mention. The reply is posted into the message's
// thread, starting one when the mention was not already threaded.
func (b *Chatbot) Respond(ctx context.Context, channel, text, ts, threadTS string) error {
	match := mentionPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	if match[1] != b.botUserId {
		b.logger.Info("skipping message not meant for the bot", "mentioned", match[1])
		return nil
	}

	question := strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
	if question == "" {
		return nil
	}

	thread := threadTS
	if thread == "" {
		thread = ts
	}

	b.recordQuestion(ctx, question)

	matches, err := b.store.Query(ctx, question, b.matchCount)
	if err != nil {
		return fmt.Errorf("failed to query knowledge base: %w", err)
	}

	history, err := b.threadHistory(ctx, channel, threadTS)
	if err != nil {
		b.logger.Warn("could not fetch thread history", "error", err)
	}

	answer, err := b.completer.Complete(ctx, defaultSystemPrompt, buildPrompt(question, matches, history))
	if err != nil {
		return fmt.Errorf("failed to generate answer: %w", err)
	}
	if answer == "" {
		return nil
	}

	return b.messenger.PostMessage(ctx, channel, answer, thread)
}

// threadHistory returns prior thread messages, excluding the triggering
// mention itself. Empty when the mention started a new thread.
func (b *Chatbot) threadHistory(ctx context.Context, channel, threadTS string) ([]slack.Message, error) {
	if threadTS == "" {
		return nil, nil
	}
	return b.messenger.ThreadMessages(ctx, channel, threadTS)
}

// recordQuestion updates the question log and concept counters.
// Metrics failures are logged, never surfaced: answering beats counting.
func (b *Chatbot) recordQuestion(ctx context.Context, question string) {
	if b.metrics == nil {
		return
	}

	if err := b.metrics.RecordQuery(ctx, &core.QueryRecord{Text: question}); err != nil {
		b.logger.Warn("could not record query", "error", err)
	}

	if b.extractor == nil {
		return
	}
	concepts, err := b.extractor.Extract(question)
	if err != nil {
		b.logger.Warn("could not extract concepts", "error", err)
		return
	}
	if err := b.metrics.IncrementConcepts(ctx, concepts); err != nil {
		b.logger.Warn("could not update concept metrics", "error", err)
	}
}

// buildPrompt stuffs the retrieved excerpts and thread history into a
// single completion prompt.
func buildPrompt(question string, matches []vectorstore.Match, history []slack.Message) string {
	var sb strings.Builder

	if len(matches) > 0 {
		sb.WriteString("Document excerpts:\n\n")
		for i, match := range matches {
			fmt.Fprintf(&sb, "--- Excerpt %d", i+1)
			if match.Metadata.Link != "" {
				fmt.Fprintf(&sb, " (%s)", match.Metadata.Link)
			}
			sb.WriteString(" ---\n")
			sb.WriteString(match.Text)
			sb.WriteString("\n\n")
		}
	}

	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n\n")
		for _, message := range history {
			speaker := message.User
			if message.BotId != "" {
				speaker = "assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, message.Text)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}
