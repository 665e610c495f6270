package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

const extractionSystemPrompt = "You extract physical-security findings from assessment documents. " +
	"Respond with a single JSON object containing three arrays: " +
	`"vulnerabilities" (objects with vulnerability, discipline, severity), ` +
	`"options_for_consideration" (objects with option_text, discipline, associated_vulnerability) and ` +
	`"sources" (objects with source_text, url, organization, reference_number). ` +
	"Respond with JSON only, no commentary."

type EnrichResult struct {
	SubmissionID string
	Status       string
}

// RetryEnrichment re-runs extraction for a submission stuck in
// processing_failed. Any other status is a state conflict.
func (s *Service) RetryEnrichment(ctx context.Context, submissionID string) (EnrichResult, error) {
	if ctx == nil {
		return EnrichResult{}, errors.New("context is required")
	}
	if strings.TrimSpace(submissionID) == "" {
		return EnrichResult{}, errSubmissionIDRequired
	}

	record, err := s.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return EnrichResult{}, err
	}

	if err := s.submissions.UpdateSubmissionStatus(ctx, ports.StatusChange{
		SubmissionID: submissionID,
		FromStatus:   string(domainreview.StatusProcessingFailed),
		ToStatus:     string(domainreview.StatusProcessing),
		UpdatedAt:    nowUTCString(),
	}); err != nil {
		return EnrichResult{}, err
	}

	content := blobString(record.Data, "content", "document_text")
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.review"),
		slog.String("submission_id", submissionID),
	)
	status := s.enrichSubmission(logCtx, submissionID, content)
	return EnrichResult{SubmissionID: submissionID, Status: string(status)}, nil
}

// enrichSubmission runs the LLM extraction for a submission already in
// processing and advances it to pending_review, or processing_failed when
// the model call fails outright. The normalizer itself never fails: garbage
// output degrades to the keyword heuristic, so a reachable model always
// yields a reviewable (possibly empty) extraction.
func (s *Service) enrichSubmission(ctx context.Context, submissionID string, content string) domainreview.Status {
	raw, err := s.chat.Chat(ctx, []ports.ChatMessage{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: buildExtractionPrompt(content)},
	})
	if err != nil {
		logging.Warn(ctx, "enrichment call failed", slog.Any("err", errs.Loggable(err)))
		s.failEnrichment(ctx, submissionID, err)
		return domainreview.StatusProcessingFailed
	}

	extraction := domainreview.NormalizeLLMResponse(raw)

	patch := map[string]any{
		"enhanced_extraction": extraction,
		"vulnerability_count": len(extraction.Vulnerabilities),
		"ofc_count":           len(extraction.OptionsForConsideration),
		"enriched_at":         nowUTCString(),
	}

	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.mergeSubmissionData(txCtx, submissionID, patch); err != nil {
			return err
		}
		return s.submissions.UpdateSubmissionStatus(txCtx, ports.StatusChange{
			SubmissionID: submissionID,
			FromStatus:   string(domainreview.StatusProcessing),
			ToStatus:     string(domainreview.StatusPendingReview),
			UpdatedAt:    nowUTCString(),
		})
	})
	if err != nil {
		logging.Error(ctx, "persist enrichment failed", slog.Any("err", errs.Loggable(err)))
		s.failEnrichment(ctx, submissionID, err)
		return domainreview.StatusProcessingFailed
	}

	logging.Info(ctx, "enrichment completed",
		slog.Int("vulnerabilities", len(extraction.Vulnerabilities)),
		slog.Int("ofcs", len(extraction.OptionsForConsideration)),
	)
	return domainreview.StatusPendingReview
}

// failEnrichment is best effort: the submission may already have moved on.
func (s *Service) failEnrichment(ctx context.Context, submissionID string, cause error) {
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.mergeSubmissionData(txCtx, submissionID, map[string]any{
			"enrichment_error": cause.Error(),
		}); err != nil {
			return err
		}
		return s.submissions.UpdateSubmissionStatus(txCtx, ports.StatusChange{
			SubmissionID: submissionID,
			FromStatus:   string(domainreview.StatusProcessing),
			ToStatus:     string(domainreview.StatusProcessingFailed),
			UpdatedAt:    nowUTCString(),
		})
	})
	if err != nil {
		logging.Warn(ctx, "mark enrichment failure failed", slog.Any("err", errs.Loggable(err)))
	}
}

// mergeSubmissionData is the shared read-modify-write over the data blob;
// the version check turns a concurrent write into ErrVersionConflict
// instead of a silent lost update.
func (s *Service) mergeSubmissionData(ctx context.Context, submissionID string, patch map[string]any) error {
	record, err := s.submissions.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}

	blob := map[string]any{}
	if len(record.Data) > 0 {
		if err := json.Unmarshal(record.Data, &blob); err != nil {
			// A corrupt blob is replaced rather than blocking the pipeline.
			blob = map[string]any{}
		}
	}
	for key, value := range patch {
		blob[key] = value
	}

	merged, err := json.Marshal(blob)
	if err != nil {
		return errs.Wrap(err, "marshal merged data")
	}
	return s.submissions.UpdateSubmissionData(ctx, submissionID, merged, record.Version, nowUTCString())
}

func buildExtractionPrompt(content string) string {
	return fmt.Sprintf("Extract all vulnerabilities and options for consideration from this document:\n\n%s", content)
}

// blobString reads the first non-empty string among aliases out of a raw
// data blob.
func blobString(data json.RawMessage, keys ...string) string {
	if len(data) == 0 {
		return ""
	}
	var blob map[string]any
	if err := json.Unmarshal(data, &blob); err != nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := blob[key].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
