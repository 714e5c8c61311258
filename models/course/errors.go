package course

import "errors"

var (
	ErrUnknownResourceType = errors.New("unknown resourcetype")
	ErrPayloadMismatch     = errors.New("payload does not match resourcetype")
	ErrPayloadMissing      = errors.New("payload missing for resourcetype")
	ErrResourceTypeChange  = errors.New("resourcetype cannot be changed")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
)
