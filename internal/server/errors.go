package server

import (
	"encoding/json"
	"net/http"

	"github.com/WhiteBite/diaflow/pkg/errors"
)

// apiError is the wire form of a failed request.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForCode maps pipeline error codes onto HTTP statuses.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidID,
		errors.ErrCodeInvalidGeometry, errors.ErrCodeInvalidPath, errors.ErrCodeDuplicateID:
		return http.StatusBadRequest
	case errors.ErrCodeValidation, errors.ErrCodeParse:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFormatNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, apiError{Error: apiErrorBody{Code: string(code), Message: msg}})
}

// writePipelineError maps err onto the envelope using its embedded code.
func writePipelineError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeError(w, statusForCode(code), code, errors.UserMessage(err))
}
