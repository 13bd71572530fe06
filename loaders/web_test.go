package loaders

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorecraft/core"
)

func TestHTMLLoader_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guide":
			fmt.Fprint(w, `<html><head><title>The Guide</title></head>`+
				`<body><h1>Getting started</h1><p>Install the tool.</p></body></html>`)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	loader, err := NewHTMLLoader(
		[]string{server.URL + "/guide", server.URL + "/missing"},
		WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	docs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1, "failing page is skipped")

	doc := docs[0]
	assert.Equal(t, "The Guide", doc.Metadata.Title)
	assert.Equal(t, server.URL+"/guide", doc.Metadata.Link)
	assert.Equal(t, "web", doc.Metadata.Source)
	assert.Equal(t, core.DocumentTypeOriginal, doc.Type)
	assert.Contains(t, doc.Text, "Getting started")
	assert.Contains(t, doc.Text, "Install the tool.")
	assert.NotContains(t, doc.Text, "<p>", "html is converted to markdown")
}

func TestHTMLLoader_FollowsMetaRefresh(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	// Root-relative target: must resolve against the page origin, which is
	// plain http for a local test server.
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta http-equiv="refresh" content="0; url=/new"></head><body>moved</body></html>`)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>New Home</title></head><body><p>The real content.</p></body></html>`)
	})

	loader, err := NewHTMLLoader([]string{server.URL + "/old"}, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	docs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "New Home", docs[0].Metadata.Title)
	assert.Contains(t, docs[0].Text, "The real content.")
}

func TestNewHTMLLoader_NoURLs(t *testing.T) {
	_, err := NewHTMLLoader(nil)
	assert.ErrorIs(t, err, ErrNoURLs)
}

func TestMetaRefreshTarget(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		pageURL string
		want    string
	}{
		{
			name:    "absolute target",
			html:    `<meta http-equiv="refresh" content="0; url=https://other.example/new">`,
			pageURL: "http://host.example/path/page",
			want:    "https://other.example/new",
		},
		{
			name:    "root-relative on http origin",
			html:    `<meta http-equiv="refresh" content="0; url=/moved">`,
			pageURL: "http://host.example/deep/path",
			want:    "http://host.example/moved",
		},
		{
			name:    "root-relative on https origin",
			html:    `<meta http-equiv="refresh" content="0; url=/moved">`,
			pageURL: "https://host.example/deep/path",
			want:    "https://host.example/moved",
		},
		{
			name:    "path-relative target",
			html:    `<meta http-equiv="refresh" content="0; url=sibling">`,
			pageURL: "http://host.example/docs/page",
			want:    "http://host.example/docs/sibling",
		},
		{
			name:    "no refresh tag",
			html:    `<meta name="description" content="nothing here">`,
			pageURL: "http://host.example/page",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := goquery.NewDocumentFromReader(strings.NewReader(
				"<html><head>" + tt.html + "</head><body></body></html>"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, metaRefreshTarget(page, tt.pageURL))
		})
	}
}

func TestSitemapLoader_Load(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset>
  <url><loc>%[1]s/docs/intro</loc></url>
  <url><loc>%[1]s/docs/api</loc></url>
  <url><loc>%[1]s/blog/news</loc></url>
</urlset>`, server.URL)
	})
	mux.HandleFunc("/docs/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>%s</title></head><body><p>Doc body.</p></body></html>`, r.URL.Path)
	})
	mux.HandleFunc("/blog/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("excluded url fetched: %s", r.URL.Path)
	})

	loader, err := NewSitemapLoader(
		[]string{server.URL + "/sitemap.xml"},
		WithInclude(`/docs/`),
		WithExclude(`/docs/api`),
		WithSitemapHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	docs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, server.URL+"/docs/intro", docs[0].Metadata.Link)
}

func TestSitemapLoader_Filtering(t *testing.T) {
	loader, err := NewSitemapLoader(
		[]string{"https://example.com/sitemap.xml"},
		WithInclude(`api-ref`, `guides`),
		WithExclude(`guides/v1`),
	)
	require.NoError(t, err)

	assert.True(t, loader.keep("https://example.com/api-ref/core"))
	assert.True(t, loader.keep("https://example.com/guides/v2/setup"))
	assert.False(t, loader.keep("https://example.com/guides/v1/setup"), "exclusion wins")
	assert.False(t, loader.keep("https://example.com/blog/post"))
}
