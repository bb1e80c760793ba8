// Package errors provides sentinel errors for source discovery.
package errors

import "errors"

var (
	// ErrSourceRootNotFound indicates the configured site root does not exist or is not a directory.
	ErrSourceRootNotFound = errors.New("source root not found")

	// ErrWalkFailed indicates filesystem traversal of the source tree failed.
	ErrWalkFailed = errors.New("source directory walk failed")

	// ErrFileReadFailed indicates reading content from a discovered source file failed.
	ErrFileReadFailed = errors.New("source file read failed")

	// ErrInvalidRelativePath indicates calculating a path relative to the root failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")

	// ErrInvalidContentType indicates a configured content type override could not be parsed.
	ErrInvalidContentType = errors.New("invalid content type")
)
