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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Type must be valid (Original or Excerpt)
//   - Excerpts must reference a parent document
//   - Originals must not reference a parent (one level of derivation only)
//
// NOT validated (populated later in the pipeline):
//   - Embedding (empty until the vector store adds the document)
//   - Tokens and Keywords (populated during excerpt generation)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	if err := ValidateDocumentType(doc.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.Type == DocumentTypeExcerpt && doc.ParentDocumentId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrExcerptWithoutParent)
	}

	if doc.Type == DocumentTypeOriginal && doc.ParentDocumentId != 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrNestedExcerpt)
	}

	return nil
}

// ValidateDocumentType validates that a DocumentType has a valid value.
func ValidateDocumentType(t DocumentType) error {
	if t != DocumentTypeOriginal && t != DocumentTypeExcerpt {
		return fmt.Errorf("%w: value %d", ErrInvalidDocumentType, t)
	}
	return nil
}
