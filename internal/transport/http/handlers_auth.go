package httptransport

import (
	"context"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"ardhi/internal/user"
	"ardhi/pkg/domain"
	dErrors "ardhi/pkg/domain-errors"
	"ardhi/pkg/requestcontext"
)

// AuthService is the credential boundary the handler delegates to.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (user.User, error)
	Login(ctx context.Context, email, password string) (user.User, string, error)
	Logout(ctx context.Context) error
}

// ProfileService is the slice of the user service the authenticated
// profile endpoints need.
type ProfileService interface {
	GetByID(ctx context.Context, id domain.UserID) (user.User, error)
	UpdateProfile(ctx context.Context, id domain.UserID, upd user.ProfileUpdate) (user.User, error)
}

type AuthHandler struct {
	auth     AuthService
	profiles ProfileService
	tokenTTL int64
}

func NewAuthHandler(auth AuthService, profiles ProfileService, tokenTTLSeconds int64) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles, tokenTTL: tokenTTLSeconds}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *AuthHandler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// RegisterAuthenticated mounts the endpoints behind RequireAuth.
func (h *AuthHandler) RegisterAuthenticated(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
	r.Patch("/auth/me", h.handleUpdateProfile)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if !govalidator.StringLength(req.Name, "1", "255") {
		respondErr(w, dErrors.New(dErrors.CodeValidation, "invalid name"))
		return
	}
	if !govalidator.IsEmail(req.Email) || !govalidator.StringLength(req.Email, "3", "255") {
		respondErr(w, dErrors.New(dErrors.CodeValidation, "invalid email"))
		return
	}
	if !govalidator.StringLength(req.Password, "8", "72") {
		respondErr(w, dErrors.New(dErrors.CodeValidation, "password must be 8 to 72 characters"))
		return
	}

	u, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	User      user.User `json:"user"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	if !govalidator.IsEmail(req.Email) || req.Password == "" {
		respondErr(w, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password"))
		return
	}

	u, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, loginResponse{Token: token, ExpiresIn: h.tokenTTL, User: u})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.profiles.GetByID(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd user.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		respondErr(w, err)
		return
	}
	u, err := h.profiles.UpdateProfile(r.Context(), requestcontext.UserID(r.Context()), upd)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}
