package loaders

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discourseServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/latest.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "0" {
			fmt.Fprint(w, `{"topic_list":{"topics":[]}}`)
			return
		}
		fmt.Fprint(w, `{"topic_list":{"topics":[
			{"id":1,"title":"How to deploy","slug":"how-to-deploy","tags":["help"],"category_id":27},
			{"id":2,"title":"Off topic","slug":"off-topic","tags":[],"category_id":5}
		]}}`)
	})
	mux.HandleFunc("/t/1.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"post_stream":{"posts":[
			{"id":10,"topic_id":1,"topic_slug":"how-to-deploy","cooked":"<p>How do I deploy this?</p>","created_at":"2023-05-01T10:00:00Z"},
			{"id":11,"topic_id":1,"topic_slug":"how-to-deploy","cooked":"<p>Use the CLI.</p>","created_at":"2023-05-01T11:00:00Z","accepted_answer":true},
			{"id":12,"topic_id":1,"topic_slug":"how-to-deploy","cooked":"<p>me too</p>","created_at":"2023-05-01T12:00:00Z"}
		]}}`)
	})
	mux.HandleFunc("/t/2.json", func(w http.ResponseWriter, r *http.Request) {
		t.Error("filtered topic fetched")
	})
	return httptest.NewServer(mux)
}

func TestDiscourseLoader_Load(t *testing.T) {
	server := discourseServer(t)
	defer server.Close()

	loader, err := NewDiscourseLoader(server.URL,
		WithTopicCount(10),
		WithTopicFilter(func(topic Topic) bool { return topic.CategoryId == 27 }),
		WithPostFilter(func(post Post) bool { return post.AcceptedAnswer }),
		WithDiscourseHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	docs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2, "opening post plus accepted answer")

	question := docs[0]
	assert.Equal(t, "How to deploy", question.Metadata.Title)
	assert.Equal(t, server.URL+"/t/how-to-deploy/1", question.Metadata.Link)
	assert.Equal(t, "discourse", question.Metadata.Source)
	assert.Contains(t, question.Text, "How do I deploy this?")
	assert.False(t, question.Metadata.CreatedAt.IsZero())

	answer := docs[1]
	assert.Contains(t, answer.Text, "Use the CLI.")
}

func TestDiscourseLoader_SendsAPIHeaders(t *testing.T) {
	var gotKey, gotUser string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Api-Key")
		gotUser = r.Header.Get("Api-Username")
		fmt.Fprint(w, `{"topic_list":{"topics":[]}}`)
	}))
	defer server.Close()

	loader, err := NewDiscourseLoader(server.URL,
		WithAPIKey("secret", "bot"),
		WithDiscourseHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "bot", gotUser)
}

func TestNewDiscourseLoader_EmptyURL(t *testing.T) {
	_, err := NewDiscourseLoader("")
	assert.ErrorIs(t, err, ErrNoURLs)
}
