package domain

import "errors"

var (
	// ErrInvalidConfig is returned when a resolved quiz configuration fails validation.
	ErrInvalidConfig = errors.New("invalid quiz configuration")
	// ErrUnknownMode indicates an unrecognized quiz mode identifier.
	ErrUnknownMode = errors.New("unknown quiz mode")
	// ErrNoQuestions means the question source returned nothing for the requested filter.
	ErrNoQuestions = errors.New("no questions available")
	// ErrAttemptNotFound is returned when an attempt id does not resolve to an active session.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrOptionNotFound indicates a submitted option ID is not on the current question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrUnauthenticated means the backing store refused a write for an anonymous caller.
	ErrUnauthenticated = errors.New("caller is not authenticated")
)
