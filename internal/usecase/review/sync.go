package review

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

type SyncResult struct {
	Created []string
	Skipped int
}

// SyncDocuments reconciles the document tray against existing synced
// submissions: one new pending_review submission per file not seen before.
// Names are compared trimmed, lowercased and extension-stripped, so
// "Report.pdf" and "report" count as the same document; the seen set is
// also updated during the run, so one run never creates duplicates from a
// listing that repeats a name.
func (s *Service) SyncDocuments(ctx context.Context) (SyncResult, error) {
	if ctx == nil {
		return SyncResult{}, errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.review.sync"))

	files, err := s.docs.List(ctx)
	if err != nil {
		return SyncResult{}, errs.Wrap(err, "list document store")
	}

	existing, err := s.submissions.ListSubmissions(ctx, ports.SubmissionFilter{Source: SourceOllamaSync})
	if err != nil {
		return SyncResult{}, errs.Wrap(err, "list synced submissions")
	}

	seen := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		name := blobString(record.Data, "document_name", "original_filename", "filename")
		if key := normalizeDocumentName(name); key != "" {
			seen[key] = struct{}{}
		}
	}

	result := SyncResult{Created: []string{}}
	for _, file := range files {
		key := normalizeDocumentName(file.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}

		data, err := json.Marshal(map[string]any{
			"document_name":     file.Name,
			"original_filename": file.Name,
			"file_size":         file.Size,
			"needs_processing":  true,
			"synced_at":         nowUTCString(),
		})
		if err != nil {
			return result, errs.Wrap(err, "marshal sync data")
		}

		now := nowUTCString()
		created, err := s.submissions.CreateSubmission(ctx, ports.SubmissionRecord{
			SubmissionID: uuid.NewString(),
			Type:         string(domainreview.TypeDocument),
			Status:       string(domainreview.StatusPendingReview),
			Data:         data,
			Source:       SourceOllamaSync,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return result, errs.Wrapf(err, "create submission for %q", file.Name)
		}

		seen[key] = struct{}{}
		result.Created = append(result.Created, file.Name)
		logging.Info(logCtx, "document synced",
			slog.String("submission_id", created.SubmissionID),
			slog.String("document", file.Name),
		)
	}

	return result, nil
}

func normalizeDocumentName(name string) string {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return ""
	}
	return strings.TrimSuffix(trimmed, filepath.Ext(trimmed))
}
