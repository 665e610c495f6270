package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

const testSecret = "test-secret"

type stubService struct {
	submitFn      func(ctx context.Context, input review.SubmitInput) (review.SubmitResult, error)
	getFn         func(ctx context.Context, submissionID string) (review.SubmissionView, error)
	listFn        func(ctx context.Context, input review.ListInput) ([]review.SubmissionView, error)
	mergeFn       func(ctx context.Context, input review.MergeDataInput) (review.SubmissionView, error)
	decideFn      func(ctx context.Context, input review.DecideInput) (review.DecideResult, error)
	retryFn       func(ctx context.Context, submissionID string) (review.EnrichResult, error)
	listOFCsFn    func(ctx context.Context) ([]ports.OFCRecord, error)
	updateOFCFn   func(ctx context.Context, input review.UpdateOFCInput) (ports.OFCRecord, error)
	deleteOFCFn   func(ctx context.Context, ofcID uint64) error
	processFn     func(ctx context.Context, input review.ProcessDocumentInput) (review.ProcessDocumentResult, error)
	syncFn        func(ctx context.Context) (review.SyncResult, error)
	healthFn      func(ctx context.Context) (review.SystemHealthResult, error)
	syncCallCount int
}

func (s *stubService) Submit(ctx context.Context, input review.SubmitInput) (review.SubmitResult, error) {
	if s.submitFn == nil {
		return review.SubmitResult{}, nil
	}
	return s.submitFn(ctx, input)
}

func (s *stubService) GetSubmission(ctx context.Context, submissionID string) (review.SubmissionView, error) {
	if s.getFn == nil {
		return review.SubmissionView{}, nil
	}
	return s.getFn(ctx, submissionID)
}

func (s *stubService) ListSubmissions(ctx context.Context, input review.ListInput) ([]review.SubmissionView, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, input)
}

func (s *stubService) MergeData(ctx context.Context, input review.MergeDataInput) (review.SubmissionView, error) {
	if s.mergeFn == nil {
		return review.SubmissionView{}, nil
	}
	return s.mergeFn(ctx, input)
}

func (s *stubService) Decide(ctx context.Context, input review.DecideInput) (review.DecideResult, error) {
	if s.decideFn == nil {
		return review.DecideResult{}, nil
	}
	return s.decideFn(ctx, input)
}

func (s *stubService) RetryEnrichment(ctx context.Context, submissionID string) (review.EnrichResult, error) {
	if s.retryFn == nil {
		return review.EnrichResult{}, nil
	}
	return s.retryFn(ctx, submissionID)
}

func (s *stubService) ListOFCs(ctx context.Context) ([]ports.OFCRecord, error) {
	if s.listOFCsFn == nil {
		return nil, nil
	}
	return s.listOFCsFn(ctx)
}

func (s *stubService) UpdateOFC(ctx context.Context, input review.UpdateOFCInput) (ports.OFCRecord, error) {
	if s.updateOFCFn == nil {
		return ports.OFCRecord{}, nil
	}
	return s.updateOFCFn(ctx, input)
}

func (s *stubService) DeleteOFC(ctx context.Context, ofcID uint64) error {
	if s.deleteOFCFn == nil {
		return nil
	}
	return s.deleteOFCFn(ctx, ofcID)
}

func (s *stubService) ProcessDocument(ctx context.Context, input review.ProcessDocumentInput) (review.ProcessDocumentResult, error) {
	if s.processFn == nil {
		return review.ProcessDocumentResult{}, nil
	}
	return s.processFn(ctx, input)
}

func (s *stubService) SyncDocuments(ctx context.Context) (review.SyncResult, error) {
	s.syncCallCount++
	if s.syncFn == nil {
		return review.SyncResult{Created: []string{}}, nil
	}
	return s.syncFn(ctx)
}

func (s *stubService) SystemHealth(ctx context.Context) (review.SystemHealthResult, error) {
	if s.healthFn == nil {
		return review.SystemHealthResult{Healthy: true}, nil
	}
	return s.healthFn(ctx)
}

func newTestServer(svc *stubService) *Server {
	return NewServer(svc, Config{
		JWTSecret:   testSecret,
		AdminEmails: []string{"listed@example.gov"},
	})
}

func signToken(t *testing.T, email string, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, server *Server, method string, path string, body string, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func TestCreateSubmissionPublic(t *testing.T) {
	svc := &stubService{
		submitFn: func(ctx context.Context, input review.SubmitInput) (review.SubmitResult, error) {
			if input.Vulnerability != "Unlocked server room" {
				t.Fatalf("vulnerability = %q", input.Vulnerability)
			}
			return review.SubmitResult{SubmissionID: "sub-1", Status: "pending_review"}, nil
		},
	}
	server := newTestServer(svc)

	recorder := doRequest(t, server, http.MethodPost, "/api/submissions",
		`{"type":"vulnerability","vulnerability":"Unlocked server room"}`, "")

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeResponse(t, recorder)
	if payload["submission_id"] != "sub-1" {
		t.Fatalf("submission_id = %v", payload["submission_id"])
	}
	if payload["success"] != true {
		t.Fatalf("success = %v, want true", payload["success"])
	}
}

func TestCreateSubmissionMissingField(t *testing.T) {
	svc := &stubService{
		submitFn: func(ctx context.Context, input review.SubmitInput) (review.SubmitResult, error) {
			return review.SubmitResult{}, fmt.Errorf("%w: vulnerability", review.ErrMissingField)
		},
	}
	server := newTestServer(svc)

	recorder := doRequest(t, server, http.MethodPost, "/api/submissions", `{"type":"vulnerability"}`, "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
	payload := decodeResponse(t, recorder)
	if payload["success"] != false {
		t.Fatalf("success = %v, want false", payload["success"])
	}
}

func TestCreateSubmissionBadJSON(t *testing.T) {
	server := newTestServer(&stubService{})

	recorder := doRequest(t, server, http.MethodPost, "/api/submissions", `{not json`, "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestListSubmissionsRequiresAuth(t *testing.T) {
	server := newTestServer(&stubService{})

	recorder := doRequest(t, server, http.MethodGet, "/api/submissions", "", "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestListSubmissionsRejectsBadToken(t *testing.T) {
	server := newTestServer(&stubService{})

	recorder := doRequest(t, server, http.MethodGet, "/api/submissions", "", "not-a-jwt")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", recorder.Code)
	}
}

func TestListSubmissionsForbiddenRole(t *testing.T) {
	server := newTestServer(&stubService{})
	token := signToken(t, "viewer@example.gov", "viewer")

	recorder := doRequest(t, server, http.MethodGet, "/api/submissions", "", token)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", recorder.Code)
	}
}

func TestListSubmissionsAllowlistedEmail(t *testing.T) {
	server := newTestServer(&stubService{})
	token := signToken(t, "Listed@Example.gov", "viewer")

	recorder := doRequest(t, server, http.MethodGet, "/api/submissions", "", token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for allowlisted email", recorder.Code)
	}
}

func TestCookieAuth(t *testing.T) {
	server := newTestServer(&stubService{})
	token := signToken(t, "admin@example.gov", "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with cookie token", recorder.Code)
	}
}

func TestApprovePassesActorFromClaims(t *testing.T) {
	svc := &stubService{
		decideFn: func(ctx context.Context, input review.DecideInput) (review.DecideResult, error) {
			if input.SubmissionID != "sub-1" {
				t.Fatalf("submission id = %q", input.SubmissionID)
			}
			if input.Action != "approve" {
				t.Fatalf("action = %q", input.Action)
			}
			if input.Actor != "admin@example.gov" {
				t.Fatalf("actor = %q, want claims email", input.Actor)
			}
			return review.DecideResult{SubmissionID: "sub-1", Status: "approved"}, nil
		},
	}
	server := newTestServer(svc)
	token := signToken(t, "admin@example.gov", "admin")

	recorder := doRequest(t, server, http.MethodPost, "/api/submissions/sub-1/approve",
		`{"action":"approve"}`, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
}

func TestApproveConflict(t *testing.T) {
	svc := &stubService{
		decideFn: func(ctx context.Context, input review.DecideInput) (review.DecideResult, error) {
			return review.DecideResult{}, ports.ErrStatusConflict
		},
	}
	server := newTestServer(svc)
	token := signToken(t, "admin@example.gov", "spsa")

	recorder := doRequest(t, server, http.MethodPost, "/api/submissions/sub-1/approve",
		`{"action":"approve"}`, token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestGetSubmissionNotFound(t *testing.T) {
	svc := &stubService{
		getFn: func(ctx context.Context, submissionID string) (review.SubmissionView, error) {
			return review.SubmissionView{}, ports.ErrSubmissionNotFound
		},
	}
	server := newTestServer(svc)
	token := signToken(t, "admin@example.gov", "admin")

	recorder := doRequest(t, server, http.MethodGet, "/api/submissions/missing", "", token)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}

func TestDeleteOFCInvalidID(t *testing.T) {
	server := newTestServer(&stubService{})
	token := signToken(t, "admin@example.gov", "admin")

	recorder := doRequest(t, server, http.MethodDelete, "/api/admin/ofcs/abc", "", token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestUpdateOFC(t *testing.T) {
	svc := &stubService{
		updateOFCFn: func(ctx context.Context, input review.UpdateOFCInput) (ports.OFCRecord, error) {
			if input.OFCID != 7 {
				t.Fatalf("ofc id = %d, want 7", input.OFCID)
			}
			if input.OptionText == nil || *input.OptionText != "Install badge readers" {
				t.Fatalf("option text = %v", input.OptionText)
			}
			return ports.OFCRecord{OFCID: 7, OptionText: *input.OptionText}, nil
		},
	}
	server := newTestServer(svc)
	token := signToken(t, "admin@example.gov", "admin")

	recorder := doRequest(t, server, http.MethodPut, "/api/admin/ofcs/7",
		`{"option_text":"Install badge readers"}`, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", recorder.Code, recorder.Body.String())
	}
}

func TestSyncAliases(t *testing.T) {
	svc := &stubService{}
	server := newTestServer(svc)
	token := signToken(t, "admin@example.gov", "admin")

	for _, path := range []string{"/api/documents/auto-sync", "/api/documents/real-sync"} {
		recorder := doRequest(t, server, http.MethodPost, path, "", token)
		if recorder.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, recorder.Code)
		}
	}
	if svc.syncCallCount != 2 {
		t.Fatalf("sync calls = %d, want 2", svc.syncCallCount)
	}
}

func TestSystemHealthPublic(t *testing.T) {
	svc := &stubService{
		healthFn: func(ctx context.Context) (review.SystemHealthResult, error) {
			return review.SystemHealthResult{
				Healthy: false,
				Services: []review.ServiceHealth{
					{Name: "ollama", Status: "offline", Error: "connection refused"},
				},
			}, nil
		},
	}
	server := newTestServer(svc)

	recorder := doRequest(t, server, http.MethodGet, "/api/dashboard/system", "", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	payload := decodeResponse(t, recorder)
	if payload["healthy"] != false {
		t.Fatalf("healthy = %v, want false", payload["healthy"])
	}
}

func TestProcessDocumentNotFoundStatus(t *testing.T) {
	svc := &stubService{
		processFn: func(ctx context.Context, input review.ProcessDocumentInput) (review.ProcessDocumentResult, error) {
			return review.ProcessDocumentResult{}, ports.ErrDocumentNotFound
		},
	}
	server := newTestServer(svc)
	token := signToken(t, "admin@example.gov", "admin")

	recorder := doRequest(t, server, http.MethodPost, "/api/documents/process",
		`{"filename":"missing.pdf"}`, token)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}
