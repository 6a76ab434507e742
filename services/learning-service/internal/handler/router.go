package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/middleware"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/usecase"
	"github.com/vasapolrittideah/elearning-api/shared/response"
	"github.com/vasapolrittideah/elearning-api/shared/validation"
)

const apiPrefix = "/api/v1"

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	AuthUsecase       usecase.AuthUsecase
	ActivationUsecase usecase.ActivationUsecase
	UserUsecase       usecase.UserUsecase
	CourseUsecase     usecase.CourseUsecase
	Validator         *validation.Validator
	Cookies           CookieOptions
	AllowedOrigins    []string
	Logger            *zerolog.Logger
}

// NewRouter builds the HTTP router of the learning service.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	authMiddleware := middleware.NewAuthMiddleware(deps.AuthUsecase, deps.Logger)

	r.Route(apiPrefix, func(r chi.Router) {
		NewAuthHTTPHandler(r, authMiddleware, deps.AuthUsecase, deps.ActivationUsecase, deps.Validator, deps.Cookies, deps.Logger)
		NewUserHTTPHandler(r, authMiddleware, deps.UserUsecase, deps.Validator, deps.Logger)
		NewCourseHTTPHandler(r, authMiddleware, deps.CourseUsecase, deps.Validator, deps.Logger)
	})

	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "API is working"})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, fmt.Sprintf("Can't find %s on this server", r.URL.Path))
	})

	return r
}
