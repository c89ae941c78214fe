package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"notes-backend/application/services"
	"notes-backend/pkg/auth"
	"notes-backend/pkg/common"
	pkgerrors "notes-backend/pkg/errors"
	"notes-backend/pkg/utils"
)

const maxBodyBytes = 10 << 10 // 10kb, matches the upstream body limit

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	auth    *services.AuthService
	tokens  *auth.JWTService
	cookies *auth.CookieManager
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	authService *services.AuthService,
	tokens *auth.JWTService,
	cookies *auth.CookieManager,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:    authService,
		tokens:  tokens,
		cookies: cookies,
		errors:  errorHandler,
		logger:  logger,
	}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100,password"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserSummary is the public shape of a user
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusCreated, "user registered successfully")
}

// Login handles POST /api/auth/login. On success the session token is
// minted and written into the signed cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	user, err := h.auth.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewInternalError("failed to generate token").WithCause(err))
		return
	}

	h.cookies.Write(w, token)
	h.logger.Info("login successful", zap.String("user_id", user.ID))

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"user": UserSummary{ID: user.ID, Username: user.Username},
	})
}

// Logout handles POST /api/auth/logout. Sessions are stateless, so logout
// only clears the client-side cookie; the token stays valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	common.RespondMessage(w, http.StatusOK, "logged out successfully")
}
