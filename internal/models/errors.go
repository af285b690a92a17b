package models

import "errors"

// Error classes shared by the generator, encoder and driver. Callers wrap
// them with context and test with errors.Is.
var (
	// ErrInvalidArgument marks a bad caller-supplied value such as a
	// negative count or value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration marks settings that cannot produce a valid plan,
	// for example timing constants with a negative idle period.
	ErrConfiguration = errors.New("configuration error")

	// ErrPrecondition marks a missing collaborator, such as no randomness source.
	ErrPrecondition = errors.New("precondition violated")
)
