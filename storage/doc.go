// Package storage defines the persistence interfaces for question
// metrics and source fingerprints, plus the MUS serialization helpers
// shared by implementations.
//
// The badger subpackage provides the embedded-database implementation.
package storage
