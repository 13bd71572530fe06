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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("document text cannot be empty")

	// ErrInvalidDocumentType indicates an invalid DocumentType value.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrExcerptWithoutParent indicates an excerpt document with no parent reference.
	ErrExcerptWithoutParent = errors.New("excerpt must reference a parent document")

	// ErrNestedExcerpt indicates an original document carrying a parent reference.
	// Derivation is one level deep: excerpts never have children of their own.
	ErrNestedExcerpt = errors.New("original document cannot reference a parent")
)
