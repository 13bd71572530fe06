// Package flows contains the periodic jobs run against the knowledge
// base: refreshing it from the configured loaders, digesting GitHub
// repository activity, and reporting question metrics.
package flows
