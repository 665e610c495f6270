package review

import "fmt"

// Status is the review lifecycle state of a submission.
type Status string

const (
	StatusPendingReview    Status = "pending_review"
	StatusProcessing       Status = "processing"
	StatusProcessingFailed Status = "processing_failed"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
)

// SubmissionType classifies what a submission carries.
type SubmissionType string

const (
	TypeVulnerability SubmissionType = "vulnerability"
	TypeOFC           SubmissionType = "ofc"
	TypeDocument      SubmissionType = "document"
)

// Review actions accepted by the decide endpoint.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var allowedTransitions = map[Status]map[Status]struct{}{
	StatusPendingReview: {
		StatusProcessing: {},
		StatusApproved:   {},
		StatusRejected:   {},
	},
	StatusProcessing: {
		StatusPendingReview:    {},
		StatusProcessingFailed: {},
	},
	StatusProcessingFailed: {
		StatusProcessing: {},
	},
	// approved and rejected are terminal
	StatusApproved: {},
	StatusRejected: {},
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := allowedTransitions[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

func ParseSubmissionType(raw string) (SubmissionType, error) {
	switch SubmissionType(raw) {
	case TypeVulnerability, TypeOFC, TypeDocument:
		return SubmissionType(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSubmissionType, raw)
	}
}

func ParseAction(raw string) (string, error) {
	switch raw {
	case ActionApprove, ActionReject:
		return raw, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, raw)
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) CanTransitionTo(next Status) bool {
	targets, ok := allowedTransitions[s]
	if !ok {
		return false
	}
	_, ok = targets[next]
	return ok
}

// ValidateTransition checks a single status edge. Both endpoints must be
// known statuses and the edge must be in the allowed set.
func ValidateTransition(from Status, to Status) error {
	if _, err := ParseStatus(string(from)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(to)); err != nil {
		return err
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
