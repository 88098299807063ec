package application

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrActorNotFound      = errors.New("actor not found")

	ErrComplaintNotFound = errors.New("complaint not found")
	ErrChangeNotFound    = errors.New("change control not found")
	ErrInvalidDecision   = errors.New("invalid review decision")
	ErrReviewForbidden   = errors.New("actor may not review change controls")
	ErrNotReviewable     = errors.New("change control is not pending review")
	ErrStorageDisabled   = errors.New("attachment storage not configured")

	// ErrLookup marks a failed role or privilege lookup against the backing store.
	ErrLookup = errors.New("authorization lookup failed")
)

// LookupError is a transport or auth failure of one authorization lookup.
// It matches both ErrLookup and the underlying cause under errors.Is.
type LookupError struct {
	Op      string
	ActorID string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s for actor %s: %v", e.Op, e.ActorID, e.Err)
}

func (e *LookupError) Unwrap() []error { return []error{ErrLookup, e.Err} }
