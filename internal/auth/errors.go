package auth

import "errors"

var (
	// ErrUnidentified is returned by identity resolvers when the request carries no identity at all.
	// It is mapped to 401 instead of a denial.
	ErrUnidentified = errors.New("caller is not identified")

	// ErrNoRole is the cause of the resolution error for actors without an assigned role.
	ErrNoRole = errors.New("actor has no role assigned")

	// ErrInactive is the cause of the resolution error for disabled members.
	ErrInactive = errors.New("member is not active")

	// ErrNilResolver is returned when a guard is invoked without an actor resolver.
	ErrNilResolver = errors.New("actor resolver is nil")
)
