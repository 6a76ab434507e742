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

type userHTTPHandler struct {
	userUsecase usecase.UserUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

func NewUserHTTPHandler(
	r chi.Router,
	authMiddleware *middleware.AuthMiddleware,
	userUsecase usecase.UserUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) {
	h := &userHTTPHandler{
		userUsecase: userUsecase,
		validator:   validator,
		logger:      logger,
	}

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/me", h.GetUserInfo)
		r.Put("/update-user-info", h.UpdateUserInfo)
		r.Put("/update-user-avatar", h.UpdateAvatar)
	})
}

func (h *userHTTPHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	user, err := h.userUsecase.GetUserInfo(r.Context(), caller.ID.Hex())
	if err != nil {
		fail(h.logger, w, err, "failed to get user info")
		return
	}

	response.JSON(w, http.StatusOK, payload.UserResponse{Success: true, User: user})
}

func (h *userHTTPHandler) UpdateUserInfo(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	var req payload.UpdateUserInfoRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid update user info request")
		return
	}

	user, err := h.userUsecase.UpdateUserInfo(r.Context(), caller.ID.Hex(), usecase.UpdateUserInfoParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		fail(h.logger, w, err, "failed to update user info")
		return
	}

	response.JSON(w, http.StatusOK, payload.UserResponse{Success: true, User: user})
}

func (h *userHTTPHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	var req payload.UpdateAvatarRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid update avatar request")
		return
	}

	user, err := h.userUsecase.UpdateAvatar(r.Context(), caller.ID.Hex(), req.Avatar)
	if err != nil {
		fail(h.logger, w, err, "failed to update avatar")
		return
	}

	response.JSON(w, http.StatusOK, payload.UserResponse{Success: true, User: user})
}
