package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinate marks latitude/longitude values outside the valid
	// range or coordinate text that does not parse as a number.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrMissingName marks a destination record without a name.
	ErrMissingName = errors.New("destination has no name")

	// ErrUnavailable marks a collaborator failure: network error, timeout,
	// unexpected status, or a malformed response.
	ErrUnavailable = errors.New("collaborator unavailable")
)

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds.
// A nil err stays nil.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
