package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ardhi/internal/document"
	"ardhi/pkg/domain"
)

// DocumentService covers the endpoints addressed by document id. Upload
// and listing live under the property routes.
type DocumentService interface {
	Get(ctx context.Context, id domain.DocumentID) (document.Document, error)
	Download(ctx context.Context, id domain.DocumentID) (document.Document, error)
	Approve(ctx context.Context, id domain.DocumentID) (document.Document, error)
	Reject(ctx context.Context, id domain.DocumentID, reason string) (document.Document, error)
	Delete(ctx context.Context, id domain.DocumentID) error
}

type DocumentHandler struct {
	documents DocumentService
}

func NewDocumentHandler(documents DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func (h *DocumentHandler) Register(r chi.Router) {
	r.Get("/documents/{documentID}", h.handleGet)
	r.Get("/documents/{documentID}/download", h.handleDownload)
	r.Post("/documents/{documentID}/approve", h.handleApprove)
	r.Post("/documents/{documentID}/reject", h.handleReject)
	r.Delete("/documents/{documentID}", h.handleDelete)
}

func (h *DocumentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

// handleDownload records the download in the activity trail and returns
// the document including its storage URL. Byte streaming is the storage
// provider's job; the API hands out the reference.
func (h *DocumentHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	doc, err := h.documents.Download(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

func (h *DocumentHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	doc, err := h.documents.Approve(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *DocumentHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req rejectRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			respondErr(w, err)
			return
		}
	}
	doc, err := h.documents.Reject(r.Context(), id, req.Reason)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

func (h *DocumentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := documentID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	if err := h.documents.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
