// Package httptransport is the thin HTTP layer: decode, validate, call a
// domain service, encode. No business logic lives here.
package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/platform/httputil"
)

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

func propertyID(r *http.Request) (domain.PropertyID, error) {
	return domain.ParsePropertyID(chi.URLParam(r, "propertyID"))
}

func documentID(r *http.Request) (domain.DocumentID, error) {
	return domain.ParseDocumentID(chi.URLParam(r, "documentID"))
}

func transferID(r *http.Request) (domain.TransferID, error) {
	return domain.ParseTransferID(chi.URLParam(r, "transferID"))
}

func userID(r *http.Request) (domain.UserID, error) {
	return domain.ParseUserID(chi.URLParam(r, "userID"))
}

func respond(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

func respondErr(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}
