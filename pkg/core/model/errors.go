package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBadge matches any *UnknownBadgeError via errors.Is
	ErrUnknownBadge = errors.New("unknown badge")

	// ErrAlreadyAssigned is returned when a person is given a second, different badge
	ErrAlreadyAssigned = errors.New("person already assigned")
)

// UnknownBadgeError reports a lookup of a badge that was never configured or
// never given a preference
type UnknownBadgeError struct {
	Person string
	Badge  string
}

func (e *UnknownBadgeError) Error() string {
	if e.Person != "" {
		return fmt.Sprintf("unknown badge %q for %s", e.Badge, e.Person)
	}
	return fmt.Sprintf("unknown badge %q", e.Badge)
}

func (e *UnknownBadgeError) Is(target error) bool {
	return target == ErrUnknownBadge
}
