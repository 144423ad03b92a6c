// Package apperr holds the error kinds shared by the recommendation core.
// Callers wrap them with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrCollaboratorUnavailable covers NLU or store timeouts and transport errors.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrUnparsableResponse means the NLU answered with something we could not read.
	ErrUnparsableResponse = errors.New("unparsable response")

	ErrNotFound  = errors.New("not found")
	ErrAmbiguous = errors.New("ambiguous selection")

	// ErrExhausted means relaxation ran out of attempts below the minimum.
	ErrExhausted = errors.New("relaxation exhausted")
)

// Unavailable wraps a transport-level failure of the named collaborator.
func Unavailable(collaborator string, err error) error {
	return fmt.Errorf("%s: %w: %v", collaborator, ErrCollaboratorUnavailable, err)
}

// Unparsable wraps a malformed answer for the named task.
func Unparsable(task string, detail string) error {
	return fmt.Errorf("%s: %w: %s", task, ErrUnparsableResponse, detail)
}

// Kind returns the sentinel carried by err, or nil when err is not one of ours.
func Kind(err error) error {
	for _, k := range []error{
		ErrCollaboratorUnavailable,
		ErrUnparsableResponse,
		ErrNotFound,
		ErrAmbiguous,
		ErrExhausted,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
