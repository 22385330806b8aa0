// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/birthprofile/internal/app"
	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
)

// DefaultMaxBodyBytes bounds a diagnose request body.
const DefaultMaxBodyBytes = 64 << 10

// Diagnoser computes a profile from a birth record.
type Diagnoser interface {
	Diagnose(ctx context.Context, in types.BirthInput) (types.Profile, error)
}

// DiagnoseHandler handles diagnosis requests.
type DiagnoseHandler struct {
	deps    Diagnoser
	maxBody int64
	logger  logger.Logger
}

// NewDiagnoseHandler creates a new diagnose handler.
func NewDiagnoseHandler(deps Diagnoser, maxBody int64, l logger.Logger) *DiagnoseHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	if l == nil {
		l = logger.Discard()
	}
	return &DiagnoseHandler{deps: deps, maxBody: maxBody, logger: l}
}

// HandleDiagnose handles POST /api/diagnose requests.
func (h *DiagnoseHandler) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	const op = "api.diagnose"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var in types.BirthInput
	if status, code, err := decodeBody(w, r, h.maxBody, &in, op); err != nil {
		writeError(w, status, code, err)
		return
	}

	profile, err := h.deps.Diagnose(r.Context(), in)
	if err == nil {
		writeJSON(w, http.StatusOK, profile)
		return
	}
	status, code, kindErr := classify(op, err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "diagnose failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
	}
	writeError(w, status, code, kindErr)
}

// decodeBody reads exactly one JSON value of at most maxBody bytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, maxBody int64, v any, op string) (int, string, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrTooLarge, err)
		}
		return http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest)
	}
	return http.StatusOK, "", nil
}

// classify maps a diagnosis error to a status, an error code and the error
// shown to the client. Unexpected causes are not exposed.
func classify(op string, err error) (int, string, error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, service.ErrChart):
		return http.StatusUnprocessableEntity, "chart_unavailable", WrapKind(op, ErrUnprocessable, err)
	default:
		return http.StatusInternalServerError, "internal", NewKind(op, ErrInternal)
	}
}
