package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frosty865/VOFC-Engine-sub003/internal/bootstrap/logging"
	domainreview "github.com/frosty865/VOFC-Engine-sub003/internal/domain/review"
	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
	"github.com/frosty865/VOFC-Engine-sub003/internal/usecase/review"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidOFCID       = errors.New("invalid ofc id")
)

func respondJSON(w http.ResponseWriter, status int, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	if _, ok := payload["success"]; !ok {
		payload["success"] = status < http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondError maps service failures onto the API's error statuses. Anything
// unrecognized is a 500 with the detail kept out of the response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		message = "internal server error"
	}
	respondJSON(w, status, map[string]any{"success": false, "error": message})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ports.ErrSubmissionNotFound),
		errors.Is(err, ports.ErrOFCNotFound),
		errors.Is(err, ports.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrStatusConflict),
		errors.Is(err, ports.ErrVersionConflict),
		errors.Is(err, domainreview.ErrInvalidAction),
		errors.Is(err, domainreview.ErrUnknownSubmissionType),
		errors.Is(err, domainreview.ErrIllegalTransition),
		errors.Is(err, review.ErrMissingField),
		errors.Is(err, review.ErrNothingToPromote),
		errors.Is(err, errInvalidRequestBody),
		errors.Is(err, errInvalidOFCID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, into any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(into); err != nil {
		return errInvalidRequestBody
	}
	return nil
}
