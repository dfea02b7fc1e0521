package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Code     apperrors.Code `json:"code"`
	Message  string         `json:"message"`
	Problems []string       `json:"problems,omitempty"`
}

var statusByCode = map[apperrors.Code]int{
	apperrors.ErrCodeInvalidInput:         http.StatusBadRequest,
	apperrors.ErrCodeInvalidConnection:    http.StatusConflict,
	apperrors.ErrCodeInvalidPreset:        http.StatusBadRequest,
	apperrors.ErrCodeInvalidImport:        http.StatusBadRequest,
	apperrors.ErrCodeInvalidPath:          http.StatusBadRequest,
	apperrors.ErrCodeInvalidConfig:        http.StatusServiceUnavailable,
	apperrors.ErrCodeNotFound:             http.StatusNotFound,
	apperrors.ErrCodeDraftNotFound:        http.StatusNotFound,
	apperrors.ErrCodeValidationFailed:     http.StatusUnprocessableEntity,
	apperrors.ErrCodeSubmissionInProgress: http.StatusConflict,
	apperrors.ErrCodeNetwork:              http.StatusBadGateway,
	apperrors.ErrCodeHTTPStatus:           http.StatusBadGateway,
	apperrors.ErrCodeTimeout:              http.StatusGatewayTimeout,
	apperrors.ErrCodeUnsupported:          http.StatusNotImplemented,
}

// writeError maps err onto a status code and a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Code: apperrors.ErrCodeInternal, Message: message(err)}

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		resp.Code = verr.Code()
		resp.Problems = verr.Problems
	} else if code := apperrors.GetCode(err); code != "" {
		resp.Code = code
	}

	status, ok := statusByCode[resp.Code]
	if !ok {
		status = http.StatusInternalServerError
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

// message is the user message plus the wrapped cause, without the code
// prefix.
func message(err error) string {
	var e *apperrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return apperrors.UserMessage(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// maxBody limits request bodies, imports included.
const maxBody = 8 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
