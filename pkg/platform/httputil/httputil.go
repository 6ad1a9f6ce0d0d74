// Package httputil centralizes JSON response writing and domain error
// translation so every handler produces the same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "ardhi/pkg/domain-errors"
)

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeDuplicateEmail:       http.StatusConflict,
	dErrors.CodeUnknownOwner:         http.StatusUnprocessableEntity,
	dErrors.CodeInvalidTransition:    http.StatusConflict,
	dErrors.CodeIncompleteForm:       http.StatusUnprocessableEntity,
	dErrors.CodeConfirmationRequired: http.StatusUnprocessableEntity,
	dErrors.CodeNotFound:             http.StatusNotFound,
	dErrors.CodeForbidden:            http.StatusForbidden,
	dErrors.CodeUnauthorized:         http.StatusUnauthorized,
	dErrors.CodeConflict:             http.StatusConflict,
	dErrors.CodeBadRequest:           http.StatusBadRequest,
	dErrors.CodeInvalidInput:         http.StatusBadRequest,
	dErrors.CodeValidation:           http.StatusBadRequest,
	dErrors.CodeInternal:             http.StatusInternalServerError,
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard error envelope.
// Internal errors suppress their description so storage details never leak
// to clients; everything else is a recoverable, reportable condition and
// keeps its message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal {
		var coded *dErrors.Error
		if ok := asCoded(err, &coded); ok && coded.Message != "" {
			body["error_description"] = coded.Message
		}
	}
	WriteJSON(w, ToHTTPStatus(code), body)
}

func asCoded(err error, target **dErrors.Error) bool {
	for err != nil {
		if coded, ok := err.(*dErrors.Error); ok {
			*target = coded
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
