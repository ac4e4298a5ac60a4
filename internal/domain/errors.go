package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRole is returned when a role value is not one of
	// tagger, reviewer or admin.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidStatus is returned when a task status value is not part of
	// the pending/tagged/reviewed/rejected state machine.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidReviewResult is returned when a review result is neither
	// agreed nor disagreed.
	ErrInvalidReviewResult = errors.New("invalid review result")

	// ErrInvalidTransition is returned when an operation is attempted on a
	// task whose current status does not permit it.
	ErrInvalidTransition = errors.New("task status does not permit this operation")

	// ErrEmptyUsername is returned when a username is empty.
	ErrEmptyUsername = errors.New("username cannot be empty")

	// ErrEmptyPassword is returned when a password is empty.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrEmptyTitle is returned when a question title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyAnswer is returned when a tagging answer carries no
	// selected options.
	ErrEmptyAnswer = errors.New("selected options cannot be empty")

	// ErrSingleChoice is returned when more than one option is submitted
	// for a single-choice question.
	ErrSingleChoice = errors.New("single-choice question accepts at most one option")
)
