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


// Package slack wraps the Slack Web API for posting answers and
// reading thread history.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	slackapi "github.com/slack-go/slack"
)

// Message is a single message within a thread.
type Message struct {
	User      string
	Text      string
	Timestamp string
	BotId     string
}

// Client posts messages and reads conversation threads.
type Client struct {
	api    *slackapi.Client
	logger *slog.Logger
}

// NewClient creates a client authenticated with a bot token.
func NewClient(token string) *Client {
	return &Client{
		api:    slackapi.New(token),
		logger: slog.Default().With("component", "slack"),
	}
}

// PostMessage posts text to a channel. A non-empty threadTS posts into
// that thread. Markdown links are converted to Slack's link syntax.
func (c *Client) PostMessage(ctx context.Context, channel, text, threadTS string) error {
	options := []slackapi.MsgOption{
		slackapi.MsgOptionText(ConvertMarkdownLinks(text), false),
	}
	if threadTS != "" {
		options = append(options, slackapi.MsgOptionTS(threadTS))
	}

	_, _, err := c.api.PostMessageContext(ctx, channel, options...)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}

	c.logger.Debug("posted message", "channel", channel, "thread", threadTS)
	return nil
}

// ThreadMessages returns all messages of a thread, oldest first.
func (c *Client) ThreadMessages(ctx context.Context, channel, threadTS string) ([]Message, error) {
	replies, _, _, err := c.api.GetConversationRepliesContext(ctx, &slackapi.GetConversationRepliesParameters{
		ChannelID: channel,
		Timestamp: threadTS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}

	messages := make([]Message, 0, len(replies))
	for _, reply := range replies {
		messages = append(messages, Message{
			User:      reply.User,
			Text:      reply.Text,
			Timestamp: reply.Timestamp,
			BotId:     reply.BotID,
		})
	}
	return messages, nil
}

// UserName resolves a user id to a display name, falling back to the
// id when the lookup fails.
func (c *Client) UserName(ctx context.Context, userId string) string {
	user, err := c.api.GetUserInfoContext(ctx, userId)
	if err != nil {
		c.logger.Debug("could not resolve user", "user", userId, "error", err)
		return userId
	}
	return user.Name
}

var markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// ConvertMarkdownLinks rewrites [text](url) links into Slack's
// <url|text> syntax.
func ConvertMarkdownLinks(text string) string {
	return markdownLinkPattern.ReplaceAllString(text, "<$2|$1>")
}
