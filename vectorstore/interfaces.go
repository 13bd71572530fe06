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


package vectorstore

import (
	"context"

	"github.com/poiesic/lorecraft/core"
)

// Match is a single similarity-search result.
type Match struct {
	// Id is the identifier of the matched document.
	Id core.ID

	// Score is the similarity score reported by the backing store.
	// Higher is more similar.
	Score float32

	// Text is the stored document text.
	Text string

	// Metadata carries the provenance stored alongside the document.
	Metadata core.Metadata

	// ParentDocumentId identifies the original document an excerpt
	// was generated from. Zero for non-excerpt matches.
	ParentDocumentId core.ID
}

// Store indexes documents by embedding and answers similarity queries.
//
// Implementations embed document text on Add and query text on Query,
// so callers never handle raw vectors.
type Store interface {
	// Add embeds and upserts the given documents. Documents with the
	// same id overwrite previous entries, which makes Add idempotent
	// for content-addressed ids.
	Add(ctx context.Context, docs []*core.Document) error

	// Query embeds the query text and returns up to n of the most
	// similar documents, best match first.
	Query(ctx context.Context, text string, n int) ([]Match, error)

	// Reset drops all indexed documents.
	Reset(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
