package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type SubmitInput struct {
	Type                    string
	Vulnerability           string
	OptionText              string
	Discipline              string
	AssociatedVulnerability string
	SourceTitle             string
	SourceURL               string
	Organization            string
	ReferenceNumber         string
	Content                 string
	Source                  string
}

type SubmitResult struct {
	SubmissionID string
	Status       string
}

// Submit creates a submission. Manual vulnerability/OFC entries land
// directly in pending_review; document submissions run synchronous LLM
// enrichment and land in pending_review or processing_failed.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	if ctx == nil {
		return SubmitResult{}, errors.New("context is required")
	}

	subType, err := domainreview.ParseSubmissionType(strings.TrimSpace(input.Type))
	if err != nil {
		return SubmitResult{}, err
	}

	data, err := buildSubmissionData(subType, input)
	if err != nil {
		return SubmitResult{}, err
	}

	status := domainreview.StatusPendingReview
	if subType == domainreview.TypeDocument {
		status = domainreview.StatusProcessing
	}

	now := nowUTCString()
	record := ports.SubmissionRecord{
		SubmissionID: uuid.NewString(),
		Type:         string(subType),
		Status:       string(status),
		Data:         data,
		Source:       firstNonEmpty(strings.TrimSpace(input.Source), SourceAPISubmission),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.submissions.CreateSubmission(ctx, record)
	if err != nil {
		return SubmitResult{}, errs.Wrap(err, "create submission")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.review"),
		slog.String("submission_id", created.SubmissionID),
		slog.String("type", created.Type),
	)
	logging.Info(logCtx, "submission created", slog.String("status", created.Status))

	if subType == domainreview.TypeDocument {
		finalStatus := s.enrichSubmission(logCtx, created.SubmissionID, input.Content)
		return SubmitResult{SubmissionID: created.SubmissionID, Status: string(finalStatus)}, nil
	}

	return SubmitResult{SubmissionID: created.SubmissionID, Status: created.Status}, nil
}

func buildSubmissionData(subType domainreview.SubmissionType, input SubmitInput) (json.RawMessage, error) {
	blob := map[string]any{}

	put := func(key string, value string) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			blob[key] = trimmed
		}
	}

	switch subType {
	case domainreview.TypeVulnerability:
		if strings.TrimSpace(input.Vulnerability) == "" {
			return nil, fmt.Errorf("%w: vulnerability", ErrMissingField)
		}
		put("vulnerability", input.Vulnerability)
	case domainreview.TypeOFC:
		if strings.TrimSpace(input.OptionText) == "" {
			return nil, fmt.Errorf("%w: option_text", ErrMissingField)
		}
		put("option_text", input.OptionText)
		put("associated_vulnerability", input.AssociatedVulnerability)
	case domainreview.TypeDocument:
		if strings.TrimSpace(input.Content) == "" {
			return nil, fmt.Errorf("%w: content", ErrMissingField)
		}
		blob["content"] = input.Content
	}

	put("discipline", input.Discipline)
	put("source_title", input.SourceTitle)
	put("source_url", input.SourceURL)
	put("organization", input.Organization)
	put("reference_number", input.ReferenceNumber)

	raw, err := json.Marshal(blob)
	if err != nil {
		return nil, errs.Wrap(err, "marshal submission data")
	}
	return raw, nil
}
