package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "custodia/pkg/domain-errors"
)

// statusByCode maps the stable domain codes to HTTP statuses. The code in the
// body is the contract; the status is a convenience for generic clients.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeNotFound:               http.StatusNotFound,
	dErrors.CodeDuplicateEntry:         http.StatusConflict,
	dErrors.CodeValidation:             http.StatusBadRequest,
	dErrors.CodeTooManyAttempts:        http.StatusTooManyRequests,
	dErrors.CodeOtpNoMatch:             http.StatusUnauthorized,
	dErrors.CodeFingerprintNoMatch:     http.StatusUnauthorized,
	dErrors.CodeInvalidToken:           http.StatusUnauthorized,
	dErrors.CodeMissingIdentityInToken: http.StatusUnauthorized,
	dErrors.CodeNotImplemented:         http.StatusNotImplemented,
	dErrors.CodeUpstreamUnavailable:    http.StatusBadGateway,
	dErrors.CodeInternal:               http.StatusInternalServerError,
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Code: string(dErrors.CodeInternal), Message: "internal error"}

	var de *dErrors.Error
	if errors.As(err, &de) {
		body = errorBody{Code: string(de.Code), Message: de.Message, Details: de.Details}
	}

	status, ok := statusByCode[dErrors.Code(body.Code)]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
