package review

import (
	"context"
	"errors"
	"strings"
)

type MergeDataInput struct {
	SubmissionID string
	Patch        map[string]any
}

// MergeData shallow-merges a partial update into the submission's data
// blob. The read-modify-write runs in a transaction and is guarded by the
// version column, so concurrent merges fail loudly instead of losing
// writes.
func (s *Service) MergeData(ctx context.Context, input MergeDataInput) (SubmissionView, error) {
	if ctx == nil {
		return SubmissionView{}, errors.New("context is required")
	}
	if strings.TrimSpace(input.SubmissionID) == "" {
		return SubmissionView{}, errSubmissionIDRequired
	}
	if len(input.Patch) == 0 {
		return SubmissionView{}, errors.New("patch is required")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.mergeSubmissionData(txCtx, input.SubmissionID, input.Patch)
	}); err != nil {
		return SubmissionView{}, err
	}

	record, err := s.submissions.GetSubmission(ctx, input.SubmissionID)
	if err != nil {
		return SubmissionView{}, err
	}
	return viewFromRecord(record), nil
}
