// Package excerpt implements the document chunking and excerpt-generation
// pipeline.
//
// Three pieces cooperate:
//   - Split cuts a document's text into token-bounded, overlapping chunks,
//     each carrying its character offset in the original text.
//   - Minimap indexes a markdown document's heading hierarchy by character
//     offset, so any chunk can be annotated with where it sits in the
//     document's structure.
//   - Generator sequences the two with keyword extraction and template
//     rendering to produce one excerpt document per chunk, processed
//     concurrently on a worker pool.
//
// All three are pure computations over in-memory text: they perform no I/O
// and share no mutable state with callers beyond their return values.
package excerpt
