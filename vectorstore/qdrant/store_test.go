package qdrant

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lorecraft/core"
	"github.com/poiesic/lorecraft/vectorstore"
)

// excerptDoc builds a valid excerpt-typed document for payload tests.
func excerptDoc(t *testing.T, text string, metadata core.Metadata) *core.Document {
	t.Helper()

	doc := core.NewDocument(text, metadata)
	doc.Type = core.DocumentTypeExcerpt
	doc.ParentDocumentId = core.IDFromContent("parent of " + text)
	require.NoError(t, core.ValidateDocument(doc))
	return doc
}

func TestDocumentPayload(t *testing.T) {
	doc := excerptDoc(t, "excerpt text", core.Metadata{
		Title:  "Guide",
		Link:   "https://example.com/guide.md",
		Source: "web",
	})

	payload := documentPayload(doc)

	assert.Equal(t, "excerpt text", payload[payloadText])
	assert.Equal(t, "Guide", payload[payloadTitle])
	assert.Equal(t, "https://example.com/guide.md", payload[payloadLink])
	assert.Equal(t, "web", payload[payloadSource])
	assert.Equal(t, int64(doc.ParentDocumentId), payload[payloadParent])
}

func TestDocumentPayload_OmitsEmptyFields(t *testing.T) {
	doc := core.NewDocument("plain text", core.Metadata{})
	require.NoError(t, core.ValidateDocument(doc))

	payload := documentPayload(doc)

	assert.Contains(t, payload, payloadText)
	assert.NotContains(t, payload, payloadTitle)
	assert.NotContains(t, payload, payloadLink)
	assert.NotContains(t, payload, payloadSource)
	assert.NotContains(t, payload, payloadParent)
}

func TestPayloadRoundTrip(t *testing.T) {
	doc := excerptDoc(t, "round trip", core.Metadata{
		Title:  "Title",
		Link:   "https://example.com",
		Source: "discourse",
	})

	values := qdrant.NewValueMap(documentPayload(doc))

	var match vectorstore.Match
	applyPayload(&match, values)

	assert.Equal(t, doc.Text, match.Text)
	assert.Equal(t, doc.Metadata, match.Metadata)
	assert.Equal(t, doc.ParentDocumentId, match.ParentDocumentId)
}
