package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

// ReviewService is the slice of the review service this transport needs.
type ReviewService interface {
	Submit(ctx context.Context, input review.SubmitInput) (review.SubmitResult, error)
	GetSubmission(ctx context.Context, submissionID string) (review.SubmissionView, error)
	ListSubmissions(ctx context.Context, input review.ListInput) ([]review.SubmissionView, error)
	MergeData(ctx context.Context, input review.MergeDataInput) (review.SubmissionView, error)
	Decide(ctx context.Context, input review.DecideInput) (review.DecideResult, error)
	RetryEnrichment(ctx context.Context, submissionID string) (review.EnrichResult, error)

	ListOFCs(ctx context.Context) ([]ports.OFCRecord, error)
	UpdateOFC(ctx context.Context, input review.UpdateOFCInput) (ports.OFCRecord, error)
	DeleteOFC(ctx context.Context, ofcID uint64) error

	ProcessDocument(ctx context.Context, input review.ProcessDocumentInput) (review.ProcessDocumentResult, error)
	SyncDocuments(ctx context.Context) (review.SyncResult, error)
	SystemHealth(ctx context.Context) (review.SystemHealthResult, error)
}

type Config struct {
	JWTSecret   string
	AdminEmails []string
}

type Server struct {
	svc    ReviewService
	router chi.Router
}

func NewServer(svc ReviewService, cfg Config) *Server {
	s := &Server{svc: svc}
	auth := newAuthenticator(cfg.JWTSecret, cfg.AdminEmails)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/dashboard/system", s.handleSystemHealth)
	r.Post("/api/submissions", s.handleCreateSubmission)

	r.Group(func(r chi.Router) {
		r.Use(auth.middleware)

		r.Get("/api/submissions", s.handleListSubmissions)
		r.Get("/api/submissions/{submissionID}", s.handleGetSubmission)
		r.Patch("/api/submissions/{submissionID}/data", s.handleMergeData)
		r.Post("/api/submissions/{submissionID}/approve", s.handleDecide)
		r.Post("/api/submissions/{submissionID}/retry", s.handleRetry)

		r.Get("/api/admin/ofcs", s.handleListOFCs)
		r.Put("/api/admin/ofcs/{ofcID}", s.handleUpdateOFC)
		r.Delete("/api/admin/ofcs/{ofcID}", s.handleDeleteOFC)

		r.Post("/api/documents/process", s.handleProcessDocument)
		// real-sync is the name the web UI has always called; auto-sync is
		// the documented one. Both run the same reconcile.
		r.Post("/api/documents/auto-sync", s.handleSyncDocuments)
		r.Post("/api/documents/real-sync", s.handleSyncDocuments)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type createSubmissionRequest struct {
	Type                    string `json:"type"`
	Vulnerability           string `json:"vulnerability"`
	OptionText              string `json:"option_text"`
	Discipline              string `json:"discipline"`
	AssociatedVulnerability string `json:"associated_vulnerability"`
	SourceTitle             string `json:"source_title"`
	SourceURL               string `json:"source_url"`
	Organization            string `json:"organization"`
	ReferenceNumber         string `json:"reference_number"`
	Content                 string `json:"content"`
	Source                  string `json:"source"`
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.svc.Submit(r.Context(), review.SubmitInput{
		Type:                    req.Type,
		Vulnerability:           req.Vulnerability,
		OptionText:              req.OptionText,
		Discipline:              req.Discipline,
		AssociatedVulnerability: req.AssociatedVulnerability,
		SourceTitle:             req.SourceTitle,
		SourceURL:               req.SourceURL,
		Organization:            req.Organization,
		ReferenceNumber:         req.ReferenceNumber,
		Content:                 req.Content,
		Source:                  req.Source,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	submissionsCreated.WithLabelValues(req.Type).Inc()
	respondJSON(w, http.StatusCreated, map[string]any{
		"submission_id": result.SubmissionID,
		"status":        result.Status,
	})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	views, err := s.svc.ListSubmissions(r.Context(), review.ListInput{
		Status: query.Get("status"),
		Type:   query.Get("type"),
		Source: query.Get("source"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"submissions": views,
		"count":       len(views),
	})
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"submission": view})
}

func (s *Server) handleMergeData(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, r, err)
		return
	}

	view, err := s.svc.MergeData(r.Context(), review.MergeDataInput{
		SubmissionID: chi.URLParam(r, "submissionID"),
		Patch:        patch,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"submission": view})
}

type decideRequest struct {
	Action   string `json:"action"`
	Comments string `json:"comments"`
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	actor := ""
	if claims, ok := claimsFromContext(r.Context()); ok {
		actor = claims.Email
	}

	result, err := s.svc.Decide(r.Context(), review.DecideInput{
		SubmissionID: chi.URLParam(r, "submissionID"),
		Action:       req.Action,
		Actor:        actor,
		Comments:     req.Comments,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	reviewDecisions.WithLabelValues(req.Action).Inc()
	respondJSON(w, http.StatusOK, map[string]any{
		"submission_id": result.SubmissionID,
		"status":        result.Status,
		"promotion": map[string]any{
			"vulnerabilities": result.Promotion.Vulnerabilities,
			"ofcs":            result.Promotion.OFCs,
			"links":           result.Promotion.Links,
			"sources":         result.Promotion.Sources,
		},
	})
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RetryEnrichment(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"submission_id": result.SubmissionID,
		"status":        result.Status,
	})
}

func (s *Server) handleListOFCs(w http.ResponseWriter, r *http.Request) {
	ofcs, err := s.svc.ListOFCs(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"ofcs":  ofcViews(ofcs),
		"count": len(ofcs),
	})
}

type updateOFCRequest struct {
	OptionText *string `json:"option_text"`
	Discipline *string `json:"discipline"`
}

func (s *Server) handleUpdateOFC(w http.ResponseWriter, r *http.Request) {
	ofcID, err := parseOFCID(chi.URLParam(r, "ofcID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req updateOFCRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := s.svc.UpdateOFC(r.Context(), review.UpdateOFCInput{
		OFCID:      ofcID,
		OptionText: req.OptionText,
		Discipline: req.Discipline,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ofc": ofcView(updated)})
}

func (s *Server) handleDeleteOFC(w http.ResponseWriter, r *http.Request) {
	ofcID, err := parseOFCID(chi.URLParam(r, "ofcID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.svc.DeleteOFC(r.Context(), ofcID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": ofcID})
}

type processDocumentRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	var req processDocumentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.svc.ProcessDocument(r.Context(), review.ProcessDocumentInput{Filename: req.Filename})
	if err != nil {
		respondError(w, r, err)
		return
	}

	documentsProcessed.WithLabelValues(result.Status).Inc()
	respondJSON(w, http.StatusOK, map[string]any{
		"submission_id": result.SubmissionID,
		"status":        result.Status,
		"filename":      result.Filename,
	})
}

func (s *Server) handleSyncDocuments(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.SyncDocuments(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
	})
}

func (s *Server) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.SystemHealth(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"healthy":  result.Healthy,
		"services": result.Services,
	})
}

type ofcPayload struct {
	OFCID           uint64  `json:"ofc_id"`
	OptionText      string  `json:"option_text"`
	Discipline      string  `json:"discipline,omitempty"`
	VulnerabilityID *uint64 `json:"vulnerability_id,omitempty"`
	Source          string  `json:"source,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

func ofcView(record ports.OFCRecord) ofcPayload {
	return ofcPayload{
		OFCID:           record.OFCID,
		OptionText:      record.OptionText,
		Discipline:      record.Discipline,
		VulnerabilityID: record.VulnerabilityID,
		Source:          record.Source,
		CreatedAt:       record.CreatedAt,
	}
}

func ofcViews(records []ports.OFCRecord) []ofcPayload {
	views := make([]ofcPayload, 0, len(records))
	for _, record := range records {
		views = append(views, ofcView(record))
	}
	return views
}

func parseOFCID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidOFCID
	}
	return id, nil
}
