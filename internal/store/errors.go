package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic form of the entity-specific not found
	// errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same username).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrMusicNotFound indicates that the requested music does not exist.
	ErrMusicNotFound = fmt.Errorf("%w: music", ErrNotFound)

	// ErrQuestionNotFound indicates that the requested tagging question
	// does not exist.
	ErrQuestionNotFound = fmt.Errorf("%w: tagging question", ErrNotFound)

	// ErrTaskNotFound indicates that the requested tagging task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: tagging task", ErrNotFound)

	// ErrRecordNotFound indicates that the requested tagging record does not exist.
	ErrRecordNotFound = fmt.Errorf("%w: tagging record", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUsernameExists indicates that a user with the given username
	// already exists.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrMusicPathExists indicates that a music row with the given
	// filesystem path already exists.
	ErrMusicPathExists = fmt.Errorf("%w: music path", ErrDuplicate)

	// ErrQuestionTitleExists indicates that a question with the given title
	// already exists.
	ErrQuestionTitleExists = fmt.Errorf("%w: question title", ErrDuplicate)
)

// IsNotFound checks if the error is any kind of "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if the error is any kind of "duplicate" error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
