// Package slackbot answers Slack mentions with knowledge-base-backed
// completions.
//
// Server exposes the Slack Events API endpoint, verifies URL challenges,
// deduplicates redelivered events, and dispatches app mentions to the
// Chatbot. The Chatbot retrieves relevant excerpts from the vector
// store, stuffs them into a completion prompt together with the thread
// history, and posts the answer back into the thread. When metrics are
// configured it also counts the concepts users ask about.
package slackbot
