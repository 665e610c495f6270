package review

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type ProcessDocumentInput struct {
	Filename string
}

type ProcessDocumentResult struct {
	SubmissionID string
	Status       string
	Filename     string
}

// ProcessDocument reads a tray file, runs extraction on it, and relocates
// the file once the extraction is persisted. A submission already created
// by sync for the same document is reused; otherwise one is created.
func (s *Service) ProcessDocument(ctx context.Context, input ProcessDocumentInput) (ProcessDocumentResult, error) {
	if ctx == nil {
		return ProcessDocumentResult{}, errors.New("context is required")
	}
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return ProcessDocumentResult{}, errFilenameRequired
	}

	content, err := s.docs.Read(ctx, filename)
	if err != nil {
		return ProcessDocumentResult{}, err
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.review.process"),
		slog.String("document", filename),
	)

	submissionID, err := s.submissionForDocument(logCtx, filename)
	if err != nil {
		return ProcessDocumentResult{}, err
	}

	status := s.enrichSubmission(logging.WithAttrs(logCtx, slog.String("submission_id", submissionID)), submissionID, string(content))

	if status == domainreview.StatusPendingReview {
		if err := s.docs.MoveToProcessed(ctx, filename); err != nil {
			// Extraction is already persisted; a stuck file only means the
			// next sync sees a duplicate name and skips it.
			logging.Warn(logCtx, "relocate processed document failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	return ProcessDocumentResult{
		SubmissionID: submissionID,
		Status:       string(status),
		Filename:     filename,
	}, nil
}

// submissionForDocument finds the synced submission matching the document
// name and moves it into processing, or creates a fresh processing
// submission when sync never saw the file.
func (s *Service) submissionForDocument(ctx context.Context, filename string) (string, error) {
	key := normalizeDocumentName(filename)

	existing, err := s.submissions.ListSubmissions(ctx, ports.SubmissionFilter{Source: SourceOllamaSync})
	if err != nil {
		return "", errs.Wrap(err, "list synced submissions")
	}

	for _, record := range existing {
		name := blobString(record.Data, "document_name", "original_filename", "filename")
		if normalizeDocumentName(name) != key {
			continue
		}

		from := domainreview.Status(record.Status)
		if from != domainreview.StatusPendingReview && from != domainreview.StatusProcessingFailed {
			continue
		}
		if err := s.submissions.UpdateSubmissionStatus(ctx, ports.StatusChange{
			SubmissionID: record.SubmissionID,
			FromStatus:   string(from),
			ToStatus:     string(domainreview.StatusProcessing),
			UpdatedAt:    nowUTCString(),
		}); err != nil {
			return "", err
		}
		return record.SubmissionID, nil
	}

	data, err := json.Marshal(map[string]any{
		"document_name":     filename,
		"original_filename": filename,
		"needs_processing":  true,
	})
	if err != nil {
		return "", errs.Wrap(err, "marshal document data")
	}

	now := nowUTCString()
	created, err := s.submissions.CreateSubmission(ctx, ports.SubmissionRecord{
		SubmissionID: uuid.NewString(),
		Type:         string(domainreview.TypeDocument),
		Status:       string(domainreview.StatusProcessing),
		Data:         data,
		Source:       SourceOllamaSync,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", errs.Wrap(err, "create document submission")
	}

	logging.Info(ctx, "document submission created", slog.String("submission_id", created.SubmissionID))
	return created.SubmissionID, nil
}
