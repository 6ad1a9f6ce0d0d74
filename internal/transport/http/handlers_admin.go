package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
)

// UserAdminService is the slice of the user service behind the admin
// routes.
type UserAdminService interface {
	List(ctx context.Context) ([]user.User, error)
	Search(ctx context.Context, query string) ([]user.User, error)
	Filtered(ctx context.Context, f user.Filter) ([]user.User, error)
	Stats(ctx context.Context) (user.Stats, error)
	UpdateRole(ctx context.Context, id domain.UserID, role user.Role) (user.User, error)
	SetVerification(ctx context.Context, id domain.UserID, verified bool) (user.User, error)
	SetActive(ctx context.Context, id domain.UserID, active bool) (user.User, error)
}

type AdminHandler struct {
	users UserAdminService
}

func NewAdminHandler(users UserAdminService) *AdminHandler {
	return &AdminHandler{users: users}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/admin/users", h.handleListUsers)
	r.Get("/admin/users/stats", h.handleUserStats)
	r.Patch("/admin/users/{userID}/role", h.handleUpdateRole)
	r.Patch("/admin/users/{userID}/verification", h.handleSetVerification)
	r.Patch("/admin/users/{userID}/active", h.handleSetActive)
}

// handleListUsers supports ?q= substring search and role/verified/
// joined_after/joined_before filters; search and filters are mutually
// exclusive, search wins.
func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if query := q.Get("q"); query != "" {
		users, err := h.users.Search(ctx, query)
		if err != nil {
			respondErr(w, err)
			return
		}
		respond(w, http.StatusOK, users)
		return
	}

	filter, filtered, err := parseUserFilter(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var users []user.User
	if filtered {
		users, err = h.users.Filtered(ctx, filter)
	} else {
		users, err = h.users.List(ctx)
	}
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, users)
}

func parseUserFilter(r *http.Request) (user.Filter, bool, error) {
	var (
		f        user.Filter
		filtered bool
	)
	q := r.URL.Query()

	if raw := q.Get("role"); raw != "" {
		role := user.Role(raw)
		if !role.Valid() {
			return f, false, dErrors.New(dErrors.CodeValidation, "unknown role")
		}
		f.Role = role
		filtered = true
	}
	if raw := q.Get("verified"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			return f, false, dErrors.New(dErrors.CodeValidation, "verified must be a boolean")
		}
		f.Verified = &verified
		filtered = true
	}
	after, err := parseFilterTime(q.Get("joined_after"))
	if err != nil {
		return f, false, err
	}
	if after != nil {
		f.JoinedAfter = after
		filtered = true
	}
	before, err := parseFilterTime(q.Get("joined_before"))
	if err != nil {
		return f, false, err
	}
	if before != nil {
		f.JoinedBefore = before
		filtered = true
	}
	return f, filtered, nil
}

func (h *AdminHandler) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.Stats(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

type roleRequest struct {
	Role user.Role `json:"role"`
}

func (h *AdminHandler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req roleRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if !req.Role.Valid() {
		respondErr(w, dErrors.New(dErrors.CodeValidation, "unknown role"))
		return
	}
	u, err := h.users.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

type verificationRequest struct {
	Verified bool `json:"verified"`
}

func (h *AdminHandler) handleSetVerification(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req verificationRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	u, err := h.users.SetVerification(r.Context(), id, req.Verified)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (h *AdminHandler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	var req activeRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	u, err := h.users.SetActive(r.Context(), id, req.Active)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}
