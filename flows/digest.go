package flows

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/poiesic/lorecraft/ai"
)

// defaultExcludedUsers filters bot accounts out of digests.
var defaultExcludedUsers = []string{"dependabot[bot]", "dependabot-preview[bot]", "dependabot"}

const summaryInstructions = "You are a witty and subtle orator. Given a" +
	" markdown digest of a repository's daily GitHub activity, tell a short," +
	" engaging story of the day's events. Highlight key contributors and" +
	" their deeds. An empty day deserves a short sarcastic quip. Start with" +
	" a pithy welcome and a very short title."

// ContributorActivity collects one contributor's events for the digest
// window.
type ContributorActivity struct {
	Login        string
	Issues       []ActivityItem
	PullRequests []ActivityItem
	Commits      []ActivityItem
}

// ActivityItem is a single linked line in the digest.
type ActivityItem struct {
	Title string
	URL   string
}

// Digest is the rendered result of a digest run.
type Digest struct {
	Repo     string
	Since    time.Time
	Markdown string

	// Story is the optional AI narration of the digest.
	Story string
}

// Poster posts digest output to a chat channel. *slack.Client
// implements it.
type Poster interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) error
}

// eventLister is the GitHub surface the digester needs.
type eventLister interface {
	ListRepositoryEvents(ctx context.Context, owner, repo string, opts *github.ListOptions) ([]*github.Event, *github.Response, error)
}

// Digester summarizes recent repository activity per contributor.
type Digester struct {
	events   eventLister
	owner    string
	repo     string
	window   time.Duration
	excluded map[string]bool

	completer ai.Completer
	poster    Poster
	channel   string

	logger *slog.Logger
}

// DigesterOption customizes a Digester.
type DigesterOption func(*Digester)

// WithWindow sets how far back activity is collected. Defaults to one day.
func WithWindow(window time.Duration) DigesterOption {
	return func(d *Digester) { d.window = window }
}

// WithExcludedUsers replaces the default bot-account filter.
func WithExcludedUsers(logins ...string) DigesterOption {
	return func(d *Digester) {
		d.excluded = make(map[string]bool, len(logins))
		for _, login := range logins {
			d.excluded[login] = true
		}
	}
}

// WithStory narrates the digest through the completion model.
func WithStory(completer ai.Completer) DigesterOption {
	return func(d *Digester) { d.completer = completer }
}

// WithSlackPost posts the digest (the story when narration is enabled)
// to a channel.
func WithSlackPost(poster Poster, channel string) DigesterOption {
	return func(d *Digester) {
		d.poster = poster
		d.channel = channel
	}
}

// WithEventLister replaces the GitHub client, mainly for tests.
func WithEventLister(events eventLister) DigesterOption {
	return func(d *Digester) { d.events = events }
}

// NewDigester creates a digester for "owner/name". An empty token
// uses unauthenticated API access.
func NewDigester(repo, token string, opts ...DigesterOption) (*Digester, error) {
	owner, name, found := strings.Cut(repo, "/")
	if !found || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository reference: %q", repo)
	}

	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	digester := &Digester{
		events: client.Activity,
		owner:  owner,
		repo:   name,
		window: 24 * time.Hour,
		logger: slog.Default().With("component", "flows.digest"),
	}
	digester.excluded = make(map[string]bool, len(defaultExcludedUsers))
	for _, login := range defaultExcludedUsers {
		digester.excluded[login] = true
	}

	for _, opt := range opts {
		opt(digester)
	}
	return digester, nil
}

// Run collects the window's events, renders the markdown digest, and
// optionally narrates and posts it.
func (d *Digester) Run(ctx context.Context) (*Digest, error) {
	since := time.Now().UTC().Add(-d.window)

	activity, err := d.collect(ctx, since)
	if err != nil {
		return nil, err
	}

	markdown, err := renderDigest(d.owner, d.repo, since, activity)
	if err != nil {
		return nil, err
	}

	digest := &Digest{
		Repo:     d.owner + "/" + d.repo,
		Since:    since,
		Markdown: markdown,
	}

	if d.completer != nil {
		story, err := d.completer.Complete(ctx, summaryInstructions, markdown)
		if err != nil {
			return nil, fmt.Errorf("failed to narrate digest: %w", err)
		}
		digest.Story = story
	}

	if d.poster != nil {
		message := digest.Markdown
		if digest.Story != "" {
			message = digest.Story
		}
		if err := d.poster.PostMessage(ctx, d.channel, message, ""); err != nil {
			return nil, fmt.Errorf("failed to post digest: %w", err)
		}
	}

	return digest, nil
}

// collect buckets the window's events by contributor.
func (d *Digester) collect(ctx context.Context, since time.Time) ([]*ContributorActivity, error) {
	events, _, err := d.events.ListRepositoryEvents(ctx, d.owner, d.repo, &github.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list repository events: %w", err)
	}

	buckets := make(map[string]*ContributorActivity)
	for _, event := range events {
		if event.GetCreatedAt().Time.Before(since) {
			continue
		}
		login := event.GetActor().GetLogin()
		if login == "" {
			login = "unknown"
		}
		if d.excluded[login] {
			continue
		}

		payload, err := event.ParsePayload()
		if err != nil {
			d.logger.Debug("skipping unparseable event", "type", event.GetType(), "error", err)
			continue
		}

		switch p := payload.(type) {
		case *github.IssuesEvent:
			if p.GetAction() != "opened" {
				continue
			}
			bucket := ensureBucket(buckets, login)
			bucket.Issues = append(bucket.Issues, ActivityItem{
				Title: p.GetIssue().GetTitle(),
				URL:   p.GetIssue().GetHTMLURL(),
			})

		case *github.PullRequestEvent:
			if p.GetAction() != "opened" {
				continue
			}
			bucket := ensureBucket(buckets, login)
			bucket.PullRequests = append(bucket.PullRequests, ActivityItem{
				Title: p.GetPullRequest().GetTitle(),
				URL:   p.GetPullRequest().GetHTMLURL(),
			})

		case *github.PushEvent:
			bucket := ensureBucket(buckets, login)
			for _, commit := range p.Commits {
				message := commitSubject(commit.GetMessage())
				if message == "" || strings.Contains(message, "Merge branch") ||
					strings.Contains(message, "Merge remote-tracking branch") {
					continue
				}
				bucket.Commits = append(bucket.Commits, ActivityItem{
					Title: message,
					URL: fmt.Sprintf("https://github.com/%s/%s/commit/%s",
						d.owner, d.repo, commit.GetSHA()),
				})
			}
		}
	}

	activity := make([]*ContributorActivity, 0, len(buckets))
	for _, bucket := range buckets {
		if len(bucket.Issues) == 0 && len(bucket.PullRequests) == 0 && len(bucket.Commits) == 0 {
			continue
		}
		activity = append(activity, bucket)
	}
	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Login < activity[j].Login
	})
	return activity, nil
}

func ensureBucket(buckets map[string]*ContributorActivity, login string) *ContributorActivity {
	if bucket, ok := buckets[login]; ok {
		return bucket
	}
	bucket := &ContributorActivity{Login: login}
	buckets[login] = bucket
	return bucket
}

// commitSubject extracts the first line of a commit message, dropping
// trailer noise.
func commitSubject(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(subject)
}

var digestTemplate = template.Must(template.New("digest").Parse(
	`# [{{.Owner}}/{{.Repo}}](https://github.com/{{.Owner}}/{{.Repo}})

## GitHub Events Digest: {{.Date}}
{{range .Activity}}
## {{.Login}}:
{{- if .Issues}}
- Created {{len .Issues}} issue(s)
{{- range .Issues}}
    - [{{.Title}}]({{.URL}})
{{- end}}
{{- end}}
{{- if .PullRequests}}
- Opened {{len .PullRequests}} PR(s)
{{- range .PullRequests}}
    - [{{.Title}}]({{.URL}})
{{- end}}
{{- end}}
{{- if .Commits}}
- Merged {{len .Commits}} commit(s)
{{- range .Commits}}
    - [{{.Title}}]({{.URL}})
{{- end}}
{{- end}}
{{end}}`))

func renderDigest(owner, repo string, since time.Time, activity []*ContributorActivity) (string, error) {
	var sb strings.Builder
	err := digestTemplate.Execute(&sb, struct {
		Owner    string
		Repo     string
		Date     string
		Activity []*ContributorActivity
	}{
		Owner:    owner,
		Repo:     repo,
		Date:     since.Format("2006-01-02"),
		Activity: activity,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return sb.String(), nil
}
