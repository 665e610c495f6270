package ports

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrOFCNotFound        = errors.New("option for consideration not found")

	// ErrStatusConflict means a conditional status update matched zero rows
	// because the submission was no longer in the expected status.
	ErrStatusConflict = errors.New("submission status changed concurrently")

	// ErrVersionConflict means a data write lost an optimistic-concurrency
	// race against another writer.
	ErrVersionConflict = errors.New("submission data changed concurrently")
)

type SubmissionRecord struct {
	SubmissionID string
	Type         string
	Status       string
	Data         json.RawMessage
	Source       string
	Comments     *string
	Version      uint64
	CreatedAt    string
	UpdatedAt    string
	ReviewedAt   *string
}

type SubmissionFilter struct {
	Status string
	Type   string
	Source string
}

type StatusChange struct {
	SubmissionID string
	// FromStatus is the expected current status; the update is conditional
	// on it so a lost race surfaces as ErrStatusConflict instead of a
	// silent double transition.
	FromStatus string
	ToStatus   string
	Comments   *string
	ReviewedAt *string
	UpdatedAt  string
}

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, record SubmissionRecord) (SubmissionRecord, error)
	GetSubmission(ctx context.Context, submissionID string) (SubmissionRecord, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]SubmissionRecord, error)
	// UpdateSubmissionData writes the blob only when expectedVersion still
	// matches, bumping the version.
	UpdateSubmissionData(ctx context.Context, submissionID string, data json.RawMessage, expectedVersion uint64, updatedAt string) error
	UpdateSubmissionStatus(ctx context.Context, change StatusChange) error
	Ping(ctx context.Context) error
}

type VulnerabilityRecord struct {
	VulnerabilityID uint64
	Vulnerability   string
	Discipline      string
	Severity        *string
	Source          string
	CreatedAt       string
}

type OFCRecord struct {
	OFCID           uint64
	OptionText      string
	Discipline      string
	VulnerabilityID *uint64
	Source          string
	CreatedAt       string
}

type OFCUpdate struct {
	OptionText *string
	Discipline *string
}

type VulnerabilityOFCLinkRecord struct {
	VulnerabilityID uint64
	OFCID           uint64
	LinkType        string
	ConfidenceScore float64
	CreatedAt       string
}

type SourceRecord struct {
	SourceID        uint64
	SourceText      string
	URL             string
	Organization    string
	ReferenceNumber string
	CreatedAt       string
}

// CatalogRepository owns the normalized production tables populated by the
// promotion step.
type CatalogRepository interface {
	CreateVulnerability(ctx context.Context, record VulnerabilityRecord) (VulnerabilityRecord, error)
	FindVulnerabilityByTitle(ctx context.Context, title string) (VulnerabilityRecord, bool, error)
	ListVulnerabilities(ctx context.Context) ([]VulnerabilityRecord, error)

	CreateOFC(ctx context.Context, record OFCRecord) (OFCRecord, error)
	GetOFC(ctx context.Context, ofcID uint64) (OFCRecord, error)
	ListOFCs(ctx context.Context) ([]OFCRecord, error)
	UpdateOFC(ctx context.Context, ofcID uint64, update OFCUpdate, updatedAt string) error
	DeleteOFC(ctx context.Context, ofcID uint64) error

	CreateVulnerabilityOFCLink(ctx context.Context, record VulnerabilityOFCLinkRecord) error
	CreateSource(ctx context.Context, record SourceRecord) (SourceRecord, error)
	LinkSourceToOFC(ctx context.Context, sourceID uint64, ofcID uint64, createdAt string) error
}
