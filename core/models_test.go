package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("some text", Metadata{Title: "a page", Link: "https://example.com/a"})

	if doc.Id == 0 {
		t.Errorf("NewDocument() did not assign an ID")
	}
	if doc.Id != IDFromContent("some text") {
		t.Errorf("NewDocument() ID is not content-derived")
	}
	if doc.Type != DocumentTypeOriginal {
		t.Errorf("NewDocument() type = %d, want original", doc.Type)
	}
	if doc.ParentDocumentId != 0 {
		t.Errorf("NewDocument() assigned a parent to an original")
	}
}

func TestDocument_Hash(t *testing.T) {
	a := NewDocument("identical text", Metadata{Title: "a"})
	b := NewDocument("identical text", Metadata{Title: "b"})

	if a.Hash() != b.Hash() {
		t.Errorf("Hash() differs for identical text")
	}
}

func TestDocument_IsMarkdown(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{name: "markdown link", link: "https://example.com/README.md", want: true},
		{name: "html link", link: "https://example.com/index.html", want: false},
		{name: "no link", link: "", want: false},
		{name: "bare md", link: "x.md", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument("text", Metadata{Link: tt.link})
			if got := doc.IsMarkdown(); got != tt.want {
				t.Errorf("IsMarkdown() = %v, want %v", got, tt.want)
			}
		})
	}
}
