package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/nestboard/pkg/errors"
)

// StatusFor maps an error to the HTTP status reported for it.
func StatusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidKind, errs.ErrCodeInvalidSnapshot, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeNodeNotFound, errs.ErrCodeWorkspaceNotFound:
		return http.StatusNotFound
	case errs.ErrCodeDuplicateConnection, errs.ErrCodeReentrant:
		return http.StatusConflict
	case errs.ErrCodeRootImmutable, errs.ErrCodeNotAnAncestor, errs.ErrCodeNotAChild, errs.ErrCodeActivePath,
		errs.ErrCodeSelfConnection, errs.ErrCodeCrossLayerConnection, errs.ErrCodeMissingEndpoint, errs.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "err", err)
		msg = "internal error"
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      string(code),
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}
