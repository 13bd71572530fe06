package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/poiesic/lorecraft/core"
)

// Topic is a Discourse topic summary from the latest-topics listing.
type Topic struct {
	Id         int      `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Tags       []string `json:"tags"`
	CategoryId int      `json:"category_id"`
}

// Post is a single post within a Discourse topic. Cooked holds the
// rendered HTML body.
type Post struct {
	Id             int       `json:"id"`
	TopicId        int       `json:"topic_id"`
	TopicSlug      string    `json:"topic_slug"`
	Cooked         string    `json:"cooked"`
	CreatedAt      time.Time `json:"created_at"`
	Score          float64   `json:"score"`
	ReadsCount     int       `json:"reads"`
	AcceptedAnswer bool      `json:"accepted_answer"`
}

type topicListResponse struct {
	TopicList struct {
		Topics []Topic `json:"topics"`
	} `json:"topic_list"`
}

type topicResponse struct {
	PostStream struct {
		Posts []Post `json:"posts"`
	} `json:"post_stream"`
}

// DiscourseLoader fetches recent forum topics and loads their posts as
// markdown documents.
type DiscourseLoader struct {
	baseURL     string
	apiKey      string
	apiUsername string
	topics      int
	perPage     int
	topicFilter func(Topic) bool
	postFilter  func(Post) bool
	client      *http.Client
	converter   *md.Converter
	logger      *slog.Logger
}

// DiscourseOption customizes a DiscourseLoader.
type DiscourseOption func(*DiscourseLoader)

// WithAPIKey authenticates requests. Some forums hide categories from
// anonymous readers.
func WithAPIKey(key, username string) DiscourseOption {
	return func(l *DiscourseLoader) {
		l.apiKey = key
		l.apiUsername = username
	}
}

// WithTopicCount sets how many recent topics are fetched.
func WithTopicCount(n int) DiscourseOption {
	return func(l *DiscourseLoader) { l.topics = n }
}

// WithTopicFilter keeps only topics the filter accepts.
func WithTopicFilter(filter func(Topic) bool) DiscourseOption {
	return func(l *DiscourseLoader) { l.topicFilter = filter }
}

// WithPostFilter keeps only posts the filter accepts. The first post
// of each topic is always kept so the question survives even when its
// replies are filtered out.
func WithPostFilter(filter func(Post) bool) DiscourseOption {
	return func(l *DiscourseLoader) { l.postFilter = filter }
}

// WithDiscourseHTTPClient replaces the HTTP client, mainly for tests.
func WithDiscourseHTTPClient(client *http.Client) DiscourseOption {
	return func(l *DiscourseLoader) { l.client = client }
}

// NewDiscourseLoader creates a loader for the forum at baseURL.
func NewDiscourseLoader(baseURL string, opts ...DiscourseOption) (*DiscourseLoader, error) {
	if baseURL == "" {
		return nil, ErrNoURLs
	}

	loader := &DiscourseLoader{
		baseURL:     strings.TrimSuffix(ensureHTTP(baseURL), "/"),
		apiUsername: "lorecraft",
		topics:      30,
		perPage:     30,
		client:      &http.Client{Timeout: 30 * time.Second},
		converter:   md.NewConverter("", true, nil),
		logger:      slog.Default().With("component", "loaders.discourse"),
	}
	for _, opt := range opts {
		opt(loader)
	}
	return loader, nil
}

// Load pages through the latest topics and fetches the posts of every
// accepted topic.
func (l *DiscourseLoader) Load(ctx context.Context) ([]*core.Document, error) {
	topics, err := l.latestTopics(ctx)
	if err != nil {
		return nil, err
	}

	var docs []*core.Document
	for _, topic := range topics {
		if l.topicFilter != nil && !l.topicFilter(topic) {
			continue
		}

		posts, err := l.topicPosts(ctx, topic.Id)
		if err != nil {
			l.logger.Warn("could not fetch topic", "topic", topic.Id, "error", err)
			continue
		}

		for i, post := range posts {
			// Keep the opening post unconditionally.
			if i > 0 && l.postFilter != nil && !l.postFilter(post) {
				continue
			}
			doc, err := l.postDocument(post)
			if err != nil {
				l.logger.Warn("could not convert post", "post", post.Id, "error", err)
				continue
			}
			docs = append(docs, doc)
		}
	}

	l.logger.Info("loaded forum posts", "forum", l.baseURL, "posts", len(docs))
	return docs, nil
}

func (l *DiscourseLoader) latestTopics(ctx context.Context) ([]Topic, error) {
	var topics []Topic
	pages := (l.topics + l.perPage - 1) / l.perPage

	for page := 0; page < pages; page++ {
		url := fmt.Sprintf("%s/latest.json?page=%d&per_page=%d", l.baseURL, page, l.perPage)

		var listing topicListResponse
		if err := l.getJSON(ctx, url, &listing); err != nil {
			return nil, err
		}

		topics = append(topics, listing.TopicList.Topics...)
		if len(topics) >= l.topics || len(listing.TopicList.Topics) == 0 {
			break
		}
	}

	if len(topics) > l.topics {
		topics = topics[:l.topics]
	}
	return topics, nil
}

func (l *DiscourseLoader) topicPosts(ctx context.Context, topicId int) ([]Post, error) {
	var topic topicResponse
	url := fmt.Sprintf("%s/t/%d.json", l.baseURL, topicId)
	if err := l.getJSON(ctx, url, &topic); err != nil {
		return nil, err
	}
	return topic.PostStream.Posts, nil
}

func (l *DiscourseLoader) postDocument(post Post) (*core.Document, error) {
	markdown, err := l.converter.ConvertString(post.Cooked)
	if err != nil {
		return nil, err
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, fmt.Errorf("post %d has no content", post.Id)
	}

	title := post.TopicSlug
	if title != "" {
		title = strings.ToUpper(title[:1]) + strings.ReplaceAll(title[1:], "-", " ")
	}
	doc := core.NewDocument(markdown, core.Metadata{
		Title:     title,
		Link:      fmt.Sprintf("%s/t/%s/%d", l.baseURL, post.TopicSlug, post.TopicId),
		Source:    "discourse",
		CreatedAt: post.CreatedAt,
	})
	return doc, nil
}

func (l *DiscourseLoader) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	if l.apiKey != "" {
		req.Header.Set("Api-Key", l.apiKey)
		req.Header.Set("Api-Username", l.apiUsername)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
