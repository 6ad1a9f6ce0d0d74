package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ardhi/internal/document"
	"ardhi/internal/property"
	"ardhi/pkg/domain"
	"ardhi/pkg/requestcontext"
)

// PropertyService is the slice of the property service the HTTP layer
// calls. Verification endpoints (Approve/Reject/Reset) mount under the
// admin router; the service still re-checks the actor so the guard does
// not depend on routing alone.
type PropertyService interface {
	Create(ctx context.Context, ownerID domain.UserID, draft property.Draft) (property.Property, error)
	Get(ctx context.Context, id domain.PropertyID) (property.Property, error)
	List(ctx context.Context) ([]property.Property, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]property.Property, error)
	Update(ctx context.Context, id domain.PropertyID, upd property.Update) (property.Property, error)
	Delete(ctx context.Context, id domain.PropertyID) error
	Approve(ctx context.Context, id domain.PropertyID) (property.Property, error)
	Reject(ctx context.Context, id domain.PropertyID) (property.Property, error)
	Reset(ctx context.Context, id domain.PropertyID) (property.Property, error)
	ComputeStats(ctx context.Context, userID domain.UserID) (property.Stats, error)
}

// DocumentUploader covers the two document endpoints that live under a
// property route.
type DocumentUploader interface {
	Upload(ctx context.Context, propertyID domain.PropertyID, up document.Upload) (document.Document, error)
	ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]document.Document, error)
}

type PropertyHandler struct {
	properties PropertyService
	documents  DocumentUploader
}

func NewPropertyHandler(properties PropertyService, documents DocumentUploader) *PropertyHandler {
	return &PropertyHandler{properties: properties, documents: documents}
}

func (h *PropertyHandler) Register(r chi.Router) {
	r.Get("/properties", h.handleList)
	r.Post("/properties", h.handleCreate)
	r.Get("/properties/{propertyID}", h.handleGet)
	r.Patch("/properties/{propertyID}", h.handleUpdate)
	r.Delete("/properties/{propertyID}", h.handleDelete)
	r.Get("/properties/{propertyID}/documents", h.handleListDocuments)
	r.Post("/properties/{propertyID}/documents", h.handleUploadDocument)
	r.Get("/stats", h.handleStats)
}

// RegisterAdmin mounts the verification endpoints behind RequireAdmin.
func (h *PropertyHandler) RegisterAdmin(r chi.Router) {
	r.Post("/properties/{propertyID}/approve", h.handleApprove)
	r.Post("/properties/{propertyID}/reject", h.handleReject)
	r.Post("/properties/{propertyID}/reset", h.handleReset)
}

func (h *PropertyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		props []property.Property
		err   error
	)
	if requestcontext.Role(ctx) == "admin" {
		props, err = h.properties.List(ctx)
	} else {
		props, err = h.properties.ListByOwner(ctx, requestcontext.UserID(ctx))
	}
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, props)
}

func (h *PropertyHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft property.Draft
	if err := decode(r, &draft); err != nil {
		respondErr(w, err)
		return
	}
	p, err := h.properties.Create(r.Context(), requestcontext.UserID(r.Context()), draft)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *PropertyHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	p, err := h.properties.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *PropertyHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var upd property.Update
	if err := decode(r, &upd); err != nil {
		respondErr(w, err)
		return
	}
	p, err := h.properties.Update(r.Context(), id, upd)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *PropertyHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	if err := h.properties.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	docs, err := h.documents.ListByProperty(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, docs)
}

func (h *PropertyHandler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var up document.Upload
	if err := decode(r, &up); err != nil {
		respondErr(w, err)
		return
	}
	doc, err := h.documents.Upload(r.Context(), id, up)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, doc)
}

func (h *PropertyHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.properties.ComputeStats(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

func (h *PropertyHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.properties.Approve)
}

func (h *PropertyHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.properties.Reject)
}

func (h *PropertyHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, h.properties.Reset)
}

func (h *PropertyHandler) verify(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.PropertyID) (property.Property, error)) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	p, err := op(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}
