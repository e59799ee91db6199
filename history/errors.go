package history

import "errors"

var (
	// ErrRepositoryRequired is returned when New is called without a repository.
	ErrRepositoryRequired = errors.New("history repository is required")

	// ErrInvalidLimit is returned for a non-positive history limit.
	ErrInvalidLimit = errors.New("history limit must be positive")
)
