// Package vectorstore defines the similarity-search surface used to
// index and retrieve documents by embedding.
//
// The Store interface hides the embedding step: implementations embed
// document text on Add and query text on Query using an ai.Embedder.
// The qdrant subpackage provides the production implementation; the
// mock subpackage provides an in-memory test double.
package vectorstore
