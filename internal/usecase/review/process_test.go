package review

import (
	"context"
	"errors"
	"testing"

	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

func TestProcessDocumentReusesSyncedSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.docs.add("assessment-2026.pdf", "The server room door was found unlocked.")
	if _, err := f.svc.SyncDocuments(ctx); err != nil {
		t.Fatalf("SyncDocuments() error = %v", err)
	}
	synced, err := f.svc.ListSubmissions(ctx, ListInput{Source: SourceOllamaSync})
	if err != nil {
		t.Fatalf("ListSubmissions() error = %v", err)
	}
	if len(synced) != 1 {
		t.Fatalf("synced submissions = %d, want 1", len(synced))
	}

	result, err := f.svc.ProcessDocument(ctx, ProcessDocumentInput{Filename: "assessment-2026.pdf"})
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if result.SubmissionID != synced[0].SubmissionID {
		t.Fatalf("submission id = %q, want reuse of %q", result.SubmissionID, synced[0].SubmissionID)
	}
	if result.Status != string(domainreview.StatusPendingReview) {
		t.Fatalf("status = %q, want pending_review", result.Status)
	}

	if len(f.docs.moved) != 1 || f.docs.moved[0] != "assessment-2026.pdf" {
		t.Fatalf("moved = %v, want the processed file relocated", f.docs.moved)
	}

	after, err := f.svc.ListSubmissions(ctx, ListInput{Source: SourceOllamaSync})
	if err != nil {
		t.Fatalf("ListSubmissions() error = %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("submissions after process = %d, want still 1", len(after))
	}
}

func TestProcessDocumentCreatesWhenUnsynced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.docs.add("fresh-upload.pdf", "The loading dock camera is inoperative.")

	result, err := f.svc.ProcessDocument(ctx, ProcessDocumentInput{Filename: "fresh-upload.pdf"})
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if result.SubmissionID == "" {
		t.Fatal("submission id is empty")
	}
	if result.Status != string(domainreview.StatusPendingReview) {
		t.Fatalf("status = %q, want pending_review", result.Status)
	}

	view, err := f.svc.GetSubmission(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("GetSubmission() error = %v", err)
	}
	if view.Data["document_name"] != "fresh-upload.pdf" {
		t.Fatalf("document_name = %v", view.Data["document_name"])
	}
}

func TestProcessDocumentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ProcessDocument(context.Background(), ProcessDocumentInput{Filename: "missing.pdf"})
	if !errors.Is(err, ports.ErrDocumentNotFound) {
		t.Fatalf("ProcessDocument() error = %v, want ErrDocumentNotFound", err)
	}
}

func TestProcessDocumentModelFailureKeepsFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.docs.add("assessment-2026.pdf", "narrative")
	f.chat.err = errors.New("ollama unreachable")

	result, err := f.svc.ProcessDocument(ctx, ProcessDocumentInput{Filename: "assessment-2026.pdf"})
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if result.Status != string(domainreview.StatusProcessingFailed) {
		t.Fatalf("status = %q, want processing_failed", result.Status)
	}
	if len(f.docs.moved) != 0 {
		t.Fatalf("moved = %v, want file kept for retry", f.docs.moved)
	}
}
