// Package httpapi exposes the account and session operations over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anveshm/vidtube/internal/common"
	"github.com/anveshm/vidtube/internal/logging"
	"github.com/anveshm/vidtube/internal/server/config"
	"github.com/anveshm/vidtube/internal/server/models"
	"github.com/anveshm/vidtube/internal/server/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"

	// multipart forms are held in memory up to this size, the rest spills
	// to temporary files
	maxMultipartMemory = 32 << 20
)

// UserService is the service surface the HTTP handlers depend on.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, *services.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, presented string) (*services.TokenPair, error)
}

// Handler serves the /api/v1/users endpoints.
type Handler struct {
	service         UserService
	logger          logging.Logger
	secureCookies   bool
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewHandler constructs a Handler from the user service and server config.
func NewHandler(service UserService, l logging.Logger, cfg *config.Config) *Handler {
	return &Handler{
		service:         service,
		logger:          l.With("module", "httpapi"),
		secureCookies:   cfg.SecureCookies,
		accessTokenTTL:  cfg.AccessTokenValidityDuration,
		refreshTokenTTL: cfg.RefreshTokenValidityDuration,
	}
}

// apiResponse is the envelope every endpoint responds with.
type apiResponse struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// userResponse is the public projection of an account. Credential fields
// never appear here.
type userResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar,omitempty"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toUserResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Status: status, Data: data, Message: message})
}

// writeError maps service errors to HTTP statuses. Unrecognized errors are
// reported as 500 without leaking internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeJSON(w, http.StatusBadRequest, nil, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeJSON(w, http.StatusConflict, nil, "username or email already taken")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, nil, "not found")
	case errors.Is(err, common.ErrorUpload):
		h.logger.Error(r.Context(), "media upload failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, nil, "media upload failed")
	default:
		h.logger.Error(r.Context(), "request failed", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, nil, "internal server error")
	}
}

func (h *Handler) setTokenCookies(w http.ResponseWriter, pair *services.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.accessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.refreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Register handles POST /api/v1/users/register. The body is a multipart
// form with text fields fullName, email, username, password and file parts
// avatar (optional) and coverImage (required).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, nil, "expected multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := services.RegisterInput{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		in.Avatar = &services.FileUpload{Name: header.Filename, Content: file}
	}

	file, header, err := r.FormFile("coverImage")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, nil, "cover image is required")
		return
	}
	defer file.Close()
	in.CoverImage = &services.FileUpload{Name: header.Filename, Content: file}

	user, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user), "user registered successfully")
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// identifierOf accepts the login name from whichever field the client used.
func (req *loginRequest) identifierOf() string {
	if req.Identifier != "" {
		return req.Identifier
	}
	if req.Username != "" {
		return req.Username
	}
	return req.Email
}

type sessionResponse struct {
	User         *userResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /api/v1/users/login. Tokens are returned both in the
// body and as http-only cookies.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.identifierOf(), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, &sessionResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in successfully")
}

// Logout handles POST /api/v1/users/logout. Requires a valid access token;
// the authenticated user ID comes from the request context.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, nil, "unauthorized")
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.clearTokenCookies(w)
	writeJSON(w, http.StatusOK, nil, "logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/v1/users/refresh. The refresh token is read
// from the cookie, falling back to the JSON body.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var presented string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, &tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "tokens refreshed successfully")
}

// Healthz reports process liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nil, "ok")
}
