package service

import "errors"

// Common service errors surfaced to the API layer as business failures.
var (
	// ErrForbidden indicates the caller's role does not permit the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrTaggerNotFound indicates the referenced tagger does not exist or
	// does not hold the tagger role.
	ErrTaggerNotFound = errors.New("tagger not found")

	// ErrReviewerNotFound indicates the referenced reviewer does not exist
	// or does not hold the reviewer role.
	ErrReviewerNotFound = errors.New("reviewer not found")

	// ErrFileNotFound indicates the requested path does not exist on disk.
	ErrFileNotFound = errors.New("file does not exist")

	// ErrNotAFile indicates the requested path is not a regular file.
	ErrNotAFile = errors.New("path is not a file")

	// ErrUnregisteredMusic indicates the requested path exists on disk but
	// has no matching music row.
	ErrUnregisteredMusic = errors.New("music file is not registered")
)
