package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrFetchFailed indicates a gallery list fetch failed (network or parse)
	ErrFetchFailed = errors.New("gallery fetch failed")

	// ErrMutationFailed indicates a remote like call failed
	ErrMutationFailed = errors.New("like mutation failed")

	// ErrStorageFailed indicates the local store could not be read or written
	ErrStorageFailed = errors.New("local storage unavailable")

	// ErrStateInconsistency indicates the lightbox index no longer matches the list
	ErrStateInconsistency = errors.New("lightbox index no longer matches list")

	// ErrStaleResponse indicates a response was superseded by a newer request
	ErrStaleResponse = errors.New("response superseded by newer request")

	// ErrServerUnreachable indicates the portfolio API is unreachable
	ErrServerUnreachable = errors.New("portfolio API is unreachable")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("not found")
)
