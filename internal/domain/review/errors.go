package review

import "errors"

var (
	ErrUnknownStatus         = errors.New("unknown submission status")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrUnknownSubmissionType = errors.New("unknown submission type")
	ErrInvalidAction         = errors.New("invalid review action")
)
