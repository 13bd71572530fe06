package flows

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aimock "github.com/poiesic/lorecraft/ai/mock"
)

type fakeEvents struct {
	events []*github.Event
}

func (f *fakeEvents) ListRepositoryEvents(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Event, *github.Response, error) {
	return f.events, nil, nil
}

type fakePoster struct {
	posted  []string
	channel string
}

func (p *fakePoster) PostMessage(ctx context.Context, channel, text, threadTS string) error {
	p.posted = append(p.posted, text)
	p.channel = channel
	return nil
}

func githubEvent(t *testing.T, eventType, login string, createdAt time.Time, payload any) *github.Event {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	rawMsg := json.RawMessage(raw)

	return &github.Event{
		Type:       github.String(eventType),
		Actor:      &github.User{Login: github.String(login)},
		CreatedAt:  &github.Timestamp{Time: createdAt},
		RawPayload: &rawMsg,
	}
}

func digestFixture(t *testing.T) *fakeEvents {
	t.Helper()
	now := time.Now().UTC()

	return &fakeEvents{events: []*github.Event{
		githubEvent(t, "IssuesEvent", "alice", now.Add(-time.Hour), map[string]any{
			"action": "opened",
			"issue":  map[string]any{"title": "Retries ignore timeout", "html_url": "https://github.com/o/r/issues/1"},
		}),
		githubEvent(t, "PullRequestEvent", "bob", now.Add(-2*time.Hour), map[string]any{
			"action":       "opened",
			"pull_request": map[string]any{"title": "Fix retry timeout", "html_url": "https://github.com/o/r/pull/2"},
		}),
		githubEvent(t, "PushEvent", "bob", now.Add(-3*time.Hour), map[string]any{
			"commits": []map[string]any{
				{"sha": "abc123", "message": "Fix retry timeout handling\n\nLonger body"},
				{"sha": "def456", "message": "Merge branch 'main' into fix"},
			},
		}),
		// Outside the window.
		githubEvent(t, "IssuesEvent", "carol", now.Add(-48*time.Hour), map[string]any{
			"action": "opened",
			"issue":  map[string]any{"title": "Old issue", "html_url": "https://github.com/o/r/issues/3"},
		}),
		// Bot account.
		githubEvent(t, "PullRequestEvent", "dependabot[bot]", now.Add(-time.Hour), map[string]any{
			"action":       "opened",
			"pull_request": map[string]any{"title": "Bump dep", "html_url": "https://github.com/o/r/pull/4"},
		}),
		// Non-opened action.
		githubEvent(t, "IssuesEvent", "alice", now.Add(-time.Hour), map[string]any{
			"action": "closed",
			"issue":  map[string]any{"title": "Closed issue", "html_url": "https://github.com/o/r/issues/5"},
		}),
	}}
}

func TestDigester_Run(t *testing.T) {
	digester, err := NewDigester("octo/repo", "", WithEventLister(digestFixture(t)))
	require.NoError(t, err)

	digest, err := digester.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "octo/repo", digest.Repo)
	assert.Contains(t, digest.Markdown, "# [octo/repo](https://github.com/octo/repo)")

	assert.Contains(t, digest.Markdown, "## alice:")
	assert.Contains(t, digest.Markdown, "Created 1 issue(s)")
	assert.Contains(t, digest.Markdown, "[Retries ignore timeout](https://github.com/o/r/issues/1)")

	assert.Contains(t, digest.Markdown, "## bob:")
	assert.Contains(t, digest.Markdown, "Opened 1 PR(s)")
	assert.Contains(t, digest.Markdown, "Merged 1 commit(s)")
	assert.Contains(t, digest.Markdown, "[Fix retry timeout handling](https://github.com/octo/repo/commit/abc123)")

	assert.NotContains(t, digest.Markdown, "Old issue", "events before the window are dropped")
	assert.NotContains(t, digest.Markdown, "Bump dep", "bot accounts are excluded")
	assert.NotContains(t, digest.Markdown, "Closed issue", "only opened issues count")
	assert.NotContains(t, digest.Markdown, "Merge branch", "merge commits are dropped")
	assert.Empty(t, digest.Story)
}

func TestDigester_StoryAndPost(t *testing.T) {
	completer := aimock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "Once upon a repo...", nil
	}
	poster := &fakePoster{}

	digester, err := NewDigester("octo/repo", "",
		WithEventLister(digestFixture(t)),
		WithStory(completer),
		WithSlackPost(poster, "C99"),
	)
	require.NoError(t, err)

	digest, err := digester.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Once upon a repo...", digest.Story)
	require.Len(t, poster.posted, 1)
	assert.Equal(t, "Once upon a repo...", poster.posted[0], "story is posted when narration is enabled")
	assert.Equal(t, "C99", poster.channel)
}

func TestDigester_EmptyWindow(t *testing.T) {
	digester, err := NewDigester("octo/repo", "", WithEventLister(&fakeEvents{}))
	require.NoError(t, err)

	digest, err := digester.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, digest.Markdown, "GitHub Events Digest")
	assert.NotContains(t, digest.Markdown, "issue(s)", "no contributor sections on an empty day")
	assert.NotContains(t, digest.Markdown, "commit(s)")
}

func TestNewDigester_InvalidRepo(t *testing.T) {
	_, err := NewDigester("not-a-repo", "")
	assert.Error(t, err)
}

func TestCommitSubject(t *testing.T) {
	assert.Equal(t, "Fix bug", commitSubject("Fix bug\n\nDetails here"))
	assert.Equal(t, "One liner", commitSubject("One liner"))
	assert.Equal(t, "", commitSubject("  \n"))
}
