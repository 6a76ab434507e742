package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/middleware"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/payload"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/usecase"
	"github.com/vasapolrittideah/elearning-api/shared/response"
	"github.com/vasapolrittideah/elearning-api/shared/validation"
)

type courseHTTPHandler struct {
	courseUsecase usecase.CourseUsecase
	validator     *validation.Validator
	logger        *zerolog.Logger
}

func NewCourseHTTPHandler(
	r chi.Router,
	authMiddleware *middleware.AuthMiddleware,
	courseUsecase usecase.CourseUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) {
	h := &courseHTTPHandler{
		courseUsecase: courseUsecase,
		validator:     validator,
		logger:        logger,
	}

	r.Get("/get-course/{id}", h.GetCourse)
	r.Get("/get-courses", h.ListCourses)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/get-course-content/{id}", h.GetCourseContent)
		r.Put("/add-question", h.AddQuestion)
		r.Put("/add-answer", h.AddAnswer)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(model.RoleAdmin))
			r.Post("/create-course", h.CreateCourse)
			r.Put("/edit-course/{id}", h.EditCourse)
		})
	})
}

func (h *courseHTTPHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseUsecase.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(h.logger, w, err, "failed to get course")
		return
	}

	response.JSON(w, http.StatusOK, payload.CoursePreviewResponse{Success: true, Course: course})
}

func (h *courseHTTPHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseUsecase.ListCourses(r.Context())
	if err != nil {
		fail(h.logger, w, err, "failed to list courses")
		return
	}

	response.JSON(w, http.StatusOK, payload.CoursesResponse{Success: true, Courses: courses})
}

func (h *courseHTTPHandler) GetCourseContent(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	content, err := h.courseUsecase.GetCourseContent(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		fail(h.logger, w, err, "failed to get course content")
		return
	}

	response.JSON(w, http.StatusOK, payload.CourseContentResponse{Success: true, Content: content})
}

func (h *courseHTTPHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateCourseRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid create course request")
		return
	}

	course, err := h.courseUsecase.CreateCourse(r.Context(), usecase.CourseParams{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		EstimatedPrice: req.EstimatedPrice,
		Thumbnail:      req.Thumbnail,
		Tags:           req.Tags,
		Level:          req.Level,
		DemoURL:        req.DemoURL,
		Benefits:       toTitled(req.Benefits),
		Prerequisites:  toTitled(req.Prerequisites),
		Contents:       toContents(req.CourseData),
	})
	if err != nil {
		fail(h.logger, w, err, "failed to create course")
		return
	}

	response.JSON(w, http.StatusCreated, payload.CourseResponse{Success: true, Course: course})
}

func (h *courseHTTPHandler) EditCourse(w http.ResponseWriter, r *http.Request) {
	var req payload.EditCourseRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid edit course request")
		return
	}

	course, err := h.courseUsecase.EditCourse(r.Context(), chi.URLParam(r, "id"), usecase.EditCourseParams{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		EstimatedPrice: req.EstimatedPrice,
		Thumbnail:      req.Thumbnail,
		Tags:           req.Tags,
		Level:          req.Level,
		DemoURL:        req.DemoURL,
		Benefits:       toTitled(req.Benefits),
		Prerequisites:  toTitled(req.Prerequisites),
		Contents:       toContents(req.CourseData),
	})
	if err != nil {
		fail(h.logger, w, err, "failed to edit course")
		return
	}

	response.JSON(w, http.StatusOK, payload.CourseResponse{Success: true, Course: course})
}

func (h *courseHTTPHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	var req payload.AddQuestionRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid add question request")
		return
	}

	question, err := h.courseUsecase.AddQuestion(r.Context(), caller, usecase.AddQuestionParams{
		CourseID:  req.CourseID,
		ContentID: req.ContentID,
		Question:  req.Question,
	})
	if err != nil {
		fail(h.logger, w, err, "failed to add question")
		return
	}

	response.JSON(w, http.StatusOK, payload.QuestionResponse{Success: true, Question: question})
}

func (h *courseHTTPHandler) AddAnswer(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	var req payload.AddAnswerRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		fail(h.logger, w, err, "invalid add answer request")
		return
	}

	answer, err := h.courseUsecase.AddAnswer(r.Context(), caller, usecase.AddAnswerParams{
		CourseID:   req.CourseID,
		ContentID:  req.ContentID,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
	})
	if err != nil {
		fail(h.logger, w, err, "failed to add answer")
		return
	}

	response.JSON(w, http.StatusOK, payload.AnswerResponse{Success: true, Answer: answer})
}

func toTitled(items []payload.TitledRequest) []model.Titled {
	if items == nil {
		return nil
	}

	out := make([]model.Titled, len(items))
	for i, item := range items {
		out[i] = model.Titled{Title: item.Title}
	}
	return out
}

// toContents maps request sections onto course sections. Sections without an
// id get one when the course is saved.
func toContents(items []payload.CourseContentRequest) []model.CourseContent {
	if items == nil {
		return nil
	}

	out := make([]model.CourseContent, len(items))
	for i, item := range items {
		links := make([]model.Link, len(item.Links))
		for j, link := range item.Links {
			links[j] = model.Link{Title: link.Title, URL: link.URL}
		}

		// Ids are validated by the payload, so a parse failure leaves a zero id.
		id, _ := bson.ObjectIDFromHex(item.ID)

		out[i] = model.CourseContent{
			ID:           id,
			Title:        item.Title,
			Description:  item.Description,
			VideoURL:     item.VideoURL,
			VideoSection: item.VideoSection,
			VideoLength:  item.VideoLength,
			VideoPlayer:  item.VideoPlayer,
			Links:        links,
			Suggestion:   item.Suggestion,
		}
	}
	return out
}
