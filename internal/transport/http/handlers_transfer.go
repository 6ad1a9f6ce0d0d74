package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ardhi/internal/transfer"
	"ardhi/pkg/domain"
	"ardhi/pkg/requestcontext"
)

// TransferService drives the four-step ownership transfer wizard and the
// admin decision endpoints.
type TransferService interface {
	Start(ctx context.Context, propertyID domain.PropertyID) (transfer.TransferRequest, error)
	Get(ctx context.Context, id domain.TransferID) (transfer.TransferRequest, error)
	ListByProperty(ctx context.Context, propertyID domain.PropertyID) ([]transfer.TransferRequest, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]transfer.TransferRequest, error)
	List(ctx context.Context) ([]transfer.TransferRequest, error)
	Advance(ctx context.Context, id domain.TransferID, form transfer.Form) (transfer.TransferRequest, error)
	Back(ctx context.Context, id domain.TransferID) (transfer.TransferRequest, error)
	Approve(ctx context.Context, id domain.TransferID) (transfer.TransferRequest, error)
	Reject(ctx context.Context, id domain.TransferID) (transfer.TransferRequest, error)
}

type TransferHandler struct {
	transfers TransferService
}

func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

func (h *TransferHandler) Register(r chi.Router) {
	r.Post("/properties/{propertyID}/transfers", h.handleStart)
	r.Get("/properties/{propertyID}/transfers", h.handleListByProperty)
	r.Get("/transfers", h.handleList)
	r.Get("/transfers/{transferID}", h.handleGet)
	r.Post("/transfers/{transferID}/advance", h.handleAdvance)
	r.Post("/transfers/{transferID}/back", h.handleBack)
}

// RegisterAdmin mounts the decision endpoints behind RequireAdmin.
func (h *TransferHandler) RegisterAdmin(r chi.Router) {
	r.Post("/transfers/{transferID}/approve", h.handleApprove)
	r.Post("/transfers/{transferID}/reject", h.handleReject)
}

func (h *TransferHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	req, err := h.transfers.Start(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, req)
}

func (h *TransferHandler) handleListByProperty(w http.ResponseWriter, r *http.Request) {
	id, err := propertyID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	reqs, err := h.transfers.ListByProperty(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, reqs)
}

func (h *TransferHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		reqs []transfer.TransferRequest
		err  error
	)
	if requestcontext.Role(ctx) == "admin" {
		reqs, err = h.transfers.List(ctx)
	} else {
		reqs, err = h.transfers.ListByUser(ctx, requestcontext.UserID(ctx))
	}
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, reqs)
}

func (h *TransferHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	req, err := h.transfers.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, req)
}

func (h *TransferHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var form transfer.Form
	if err := decode(r, &form); err != nil {
		respondErr(w, err)
		return
	}
	req, err := h.transfers.Advance(r.Context(), id, form)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, req)
}

func (h *TransferHandler) handleBack(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	req, err := h.transfers.Back(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, req)
}

func (h *TransferHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	req, err := h.transfers.Approve(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, req)
}

func (h *TransferHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	req, err := h.transfers.Reject(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, req)
}
