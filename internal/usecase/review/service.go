package review

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

var (
	errSubmissionIDRequired = errors.New("submission id is required")
	errFilenameRequired     = errors.New("filename is required")

	// ErrNothingToPromote blocks approval of a submission whose data blob
	// does not yield a single vulnerability or OFC.
	ErrNothingToPromote = errors.New("submission has no promotable records")

	// ErrMissingField is wrapped around per-type required-field failures on
	// submit so the transport can answer 400.
	ErrMissingField = errors.New("missing required field")
)

// Provenance tags recorded on submissions.
const (
	SourceAPISubmission  = "api_submission"
	SourceOllamaSync     = "ollama_server_sync"
	SourceDocumentUpload = "document_upload"
)

// Service owns the submission lifecycle: intake, enrichment, review
// decisions, promotion into the production tables, and document sync.
type Service struct {
	submissions ports.SubmissionRepository
	catalog     ports.CatalogRepository
	uow         ports.UnitOfWork
	chat        ports.ChatClient
	docs        ports.DocumentStore
}

func NewService(
	submissions ports.SubmissionRepository,
	catalog ports.CatalogRepository,
	uow ports.UnitOfWork,
	chat ports.ChatClient,
	docs ports.DocumentStore,
) *Service {
	return &Service{
		submissions: submissions,
		catalog:     catalog,
		uow:         uow,
		chat:        chat,
		docs:        docs,
	}
}

type SubmissionView struct {
	SubmissionID string         `json:"submission_id"`
	Type         string         `json:"type"`
	Status       string         `json:"status"`
	Source       string         `json:"source"`
	Comments     string         `json:"comments,omitempty"`
	Data         map[string]any `json:"data"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	ReviewedAt   string         `json:"reviewed_at,omitempty"`
}

func viewFromRecord(record ports.SubmissionRecord) SubmissionView {
	view := SubmissionView{
		SubmissionID: record.SubmissionID,
		Type:         record.Type,
		Status:       record.Status,
		Source:       record.Source,
		Data:         map[string]any{},
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.Comments != nil {
		view.Comments = *record.Comments
	}
	if record.ReviewedAt != nil {
		view.ReviewedAt = *record.ReviewedAt
	}
	if len(record.Data) > 0 {
		// Malformed blobs render as empty rather than failing the read.
		_ = json.Unmarshal(record.Data, &view.Data)
	}
	return view
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
