package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is derived from content using BLAKE2b hashing, so identical text
// always maps to the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentType identifies how a document was produced.
type DocumentType int

const (
	// DocumentTypeOriginal is a document as loaded from its source.
	DocumentTypeOriginal DocumentType = iota + 1
	// DocumentTypeExcerpt is a chunk-derived document with a parent.
	DocumentTypeExcerpt
)

// Metadata describes where a document came from.
type Metadata struct {
	Title     string
	Link      string
	Source    string            // Loader that produced the document, e.g. "sitemap", "github", "discourse"
	CreatedAt time.Time         // When the source content was created (zero if unknown)
	Extra     map[string]string // Loader-specific fields
}

// Document is a source of information that is storable and searchable.
// Anything that can be represented as text can be stored as a document:
// web pages, git repos, forum posts, and plain text files.
type Document struct {
	Id               ID
	ParentDocumentId ID // Zero for originals; excerpts reference their source
	Type             DocumentType
	Text             string
	Metadata         Metadata
	Tokens           int       // Token count of Text
	Keywords         []string  // Ordered, most relevant first
	Embedding        []float32 // Populated during vector store add
}

// NewDocument creates an original document with a content-derived ID.
func NewDocument(text string, metadata Metadata) *Document {
	return &Document{
		Id:       IDFromContent(text),
		Type:     DocumentTypeOriginal,
		Text:     text,
		Metadata: metadata,
	}
}

// Hash returns the content hash of the document text. A persisted excerpt
// set keyed by these hashes is implicitly tied to the tokenizer vocabulary
// that produced the excerpts.
func (d *Document) Hash() ID {
	return IDFromContent(d.Text)
}

// IsMarkdown reports whether the document should be treated as markdown
// for structural annotation. The heuristic follows the source link.
func (d *Document) IsMarkdown() bool {
	return strings.HasSuffix(d.Metadata.Link, ".md")
}

// ConceptMetric is a running counter for a question concept, used for
// tracking what users ask the chatbot about.
type ConceptMetric struct {
	Concept   string
	Count     uint64
	UpdatedAt time.Time
}

// QueryRecord is a logged user question.
type QueryRecord struct {
	Id      string // UUID
	Text    string
	AskedAt time.Time
}

// Fingerprint records the content hash last indexed for a source link,
// letting refresh runs skip unchanged documents.
type Fingerprint struct {
	Link      string
	Hash      ID
	IndexedAt time.Time
}
