package loaders

import "errors"

var (
	// ErrNoURLs is returned when a web loader is constructed without URLs.
	ErrNoURLs = errors.New("no urls configured")

	// ErrBadStatus is returned when a remote endpoint answers with a
	// non-success status code.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrInvalidRepo is returned when a repository reference is not in
	// "owner/name" form.
	ErrInvalidRepo = errors.New("invalid repository reference")
)
