package review

import (
	"context"
	"errors"
	"strings"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type ListInput struct {
	Status string
	Type   string
	Source string
}

func (s *Service) GetSubmission(ctx context.Context, submissionID string) (SubmissionView, error) {
	if ctx == nil {
		return SubmissionView{}, errors.New("context is required")
	}
	if strings.TrimSpace(submissionID) == "" {
		return SubmissionView{}, errSubmissionIDRequired
	}

	record, err := s.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return SubmissionView{}, err
	}
	return viewFromRecord(record), nil
}

func (s *Service) ListSubmissions(ctx context.Context, input ListInput) ([]SubmissionView, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	records, err := s.submissions.ListSubmissions(ctx, ports.SubmissionFilter{
		Status: strings.TrimSpace(input.Status),
		Type:   strings.TrimSpace(input.Type),
		Source: strings.TrimSpace(input.Source),
	})
	if err != nil {
		return nil, err
	}

	views := make([]SubmissionView, 0, len(records))
	for _, record := range records {
		views = append(views, viewFromRecord(record))
	}
	return views, nil
}
