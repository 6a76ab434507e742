package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/middleware"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/payload"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/usecase"
	"github.com/vasapolrittideah/elearning-api/shared/response"
	"github.com/vasapolrittideah/elearning-api/shared/validation"
)

type authHTTPHandler struct {
	authUsecase       usecase.AuthUsecase
	activationUsecase usecase.ActivationUsecase
	validator         *validation.Validator
	cookies           CookieOptions
	logger            *zerolog.Logger
}

func NewAuthHTTPHandler(
	r chi.Router,
	authMiddleware *middleware.AuthMiddleware,
	authUsecase usecase.AuthUsecase,
	activationUsecase usecase.ActivationUsecase,
	validator *validation.Validator,
	cookies CookieOptions,
	logger *zerolog.Logger,
) {
	h := &authHTTPHandler{
		authUsecase:       authUsecase,
		activationUsecase: activationUsecase,
		validator:         validator,
		cookies:           cookies,
		logger:            logger,
	}

	r.Post("/register", h.Register)
	r.Post("/activate", h.Activate)
	r.Post("/login", h.Login)
	r.Post("/social-auth", h.SocialAuth)
	r.Get("/refresh", h.Refresh)
	r.With(authMiddleware.RequireAuth).Get("/logout", h.Logout)
}

func (h *authHTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid register request")
		return
	}

	token, err := h.activationUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(h.logger, w, err, "failed to register user")
		return
	}

	response.JSON(w, http.StatusCreated, payload.RegisterResponse{
		Success:         true,
		Message:         "Please check your email to activate your account",
		ActivationToken: token,
	})
}

func (h *authHTTPHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req payload.ActivateRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid activate request")
		return
	}

	if _, err := h.activationUsecase.Activate(r.Context(), usecase.ActivateParams{
		ActivationToken: req.ActivationToken,
		ActivationCode:  req.ActivationCode,
	}); err != nil {
		fail(h.logger, w, err, "failed to activate user")
		return
	}

	response.JSON(w, http.StatusCreated, payload.StatusResponse{
		Success: true,
		Message: "Account activated",
	})
}

func (h *authHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid login request")
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(h.logger, w, err, "failed to login")
		return
	}

	h.writeSession(w, http.StatusOK, result)
}

func (h *authHTTPHandler) SocialAuth(w http.ResponseWriter, r *http.Request) {
	var req payload.SocialAuthRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid social auth request")
		return
	}

	result, err := h.authUsecase.SocialAuth(r.Context(), usecase.SocialAuthParams{
		Name:    req.Name,
		Email:   req.Email,
		Avatar:  req.Avatar,
		IDToken: req.IDToken,
	})
	if err != nil {
		fail(h.logger, w, err, "failed to sign in with social provider")
		return
	}

	h.writeSession(w, http.StatusOK, result)
}

func (h *authHTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = cookie.Value
	}

	result, err := h.authUsecase.Refresh(r.Context(), token)
	if err != nil {
		fail(h.logger, w, err, "failed to refresh token")
		return
	}

	h.writeSession(w, http.StatusOK, result)
}

func (h *authHTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.FromError(w, usecase.ErrLoginRequired)
		return
	}

	if err := h.authUsecase.Logout(r.Context(), user.ID.Hex()); err != nil {
		fail(h.logger, w, err, "failed to logout")
		return
	}

	clearTokenCookies(w, h.cookies)
	response.JSON(w, http.StatusOK, payload.StatusResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

func (h *authHTTPHandler) writeSession(w http.ResponseWriter, status int, result *usecase.AuthResult) {
	setTokenCookies(w, result.Tokens, h.cookies)
	response.JSON(w, status, payload.AuthResponse{
		Success:     true,
		User:        result.User,
		AccessToken: result.Tokens.AccessToken,
	})
}
