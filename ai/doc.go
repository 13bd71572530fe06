// Package ai provides abstractions for the AI services lorecraft consumes.
//
// Two interfaces cover the external collaborators: Embedder for text
// embeddings (used by the vector store) and Completer for chat completions
// (used by the chatbot and the digest summarizer). Provider aggregates both
// for convenient initialization.
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and make assertions.
package ai
