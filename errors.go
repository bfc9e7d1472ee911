package gesture

import "errors"

var (
	// ErrMemberNotFound is returned when a member id is not registered.
	ErrMemberNotFound = errors.New("gesture: member not found")
	// ErrDetectorNotFound is returned when a member has no detector with the
	// requested gesture id.
	ErrDetectorNotFound = errors.New("gesture: detector not found")
	// ErrInvalidState is returned when a host asks for a state a handler
	// cannot be forced into.
	ErrInvalidState = errors.New("gesture: invalid state")
	// ErrNilMember is returned when a nil member is registered.
	ErrNilMember = errors.New("gesture: nil member")
)
