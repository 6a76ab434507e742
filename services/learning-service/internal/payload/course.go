package payload

import "github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"

type TitledRequest struct {
	Title string `json:"title" validate:"required"`
}

type LinkRequest struct {
	Title string `json:"title" validate:"required"`
	URL   string `json:"url"   validate:"required,url"`
}

// CourseContentRequest is one course section. ID is set when editing an
// existing section so its Q&A threads stay attached.
type CourseContentRequest struct {
	ID           string        `json:"_id"          validate:"omitempty,mongodb"`
	Title        string        `json:"title"        validate:"required"`
	Description  string        `json:"description"`
	VideoURL     string        `json:"videoUrl"     validate:"required"`
	VideoSection string        `json:"videoSection"`
	VideoLength  float64       `json:"videoLength"  validate:"gte=0"`
	VideoPlayer  string        `json:"videoPlayer"`
	Links        []LinkRequest `json:"links"        validate:"dive"`
	Suggestion   string        `json:"suggestion"`
}

type CreateCourseRequest struct {
	Name           string                 `json:"name"           validate:"required,max=200"`
	Description    string                 `json:"description"    validate:"required"`
	Price          float64                `json:"price"          validate:"gte=0"`
	EstimatedPrice float64                `json:"estimatedPrice" validate:"gte=0"`
	Thumbnail      string                 `json:"thumbnail"`
	Tags           string                 `json:"tags"           validate:"required"`
	Level          string                 `json:"level"          validate:"required"`
	DemoURL        string                 `json:"demoUrl"        validate:"required"`
	Benefits       []TitledRequest        `json:"benefits"       validate:"dive"`
	Prerequisites  []TitledRequest        `json:"prerequisites"  validate:"dive"`
	CourseData     []CourseContentRequest `json:"courseData"     validate:"dive"`
}

// EditCourseRequest changes only the fields present in the body.
type EditCourseRequest struct {
	Name           *string                `json:"name"           validate:"omitempty,min=1,max=200"`
	Description    *string                `json:"description"`
	Price          *float64               `json:"price"          validate:"omitempty,gte=0"`
	EstimatedPrice *float64               `json:"estimatedPrice" validate:"omitempty,gte=0"`
	Thumbnail      *string                `json:"thumbnail"`
	Tags           *string                `json:"tags"`
	Level          *string                `json:"level"`
	DemoURL        *string                `json:"demoUrl"`
	Benefits       []TitledRequest        `json:"benefits"       validate:"omitempty,dive"`
	Prerequisites  []TitledRequest        `json:"prerequisites"  validate:"omitempty,dive"`
	CourseData     []CourseContentRequest `json:"courseData"     validate:"omitempty,dive"`
}

type AddQuestionRequest struct {
	Question  string `json:"question"  validate:"required,max=2000"`
	CourseID  string `json:"courseId"  validate:"required"`
	ContentID string `json:"contentId" validate:"required"`
}

type AddAnswerRequest struct {
	Answer     string `json:"answer"     validate:"required,max=2000"`
	CourseID   string `json:"courseId"   validate:"required"`
	ContentID  string `json:"contentId"  validate:"required"`
	QuestionID string `json:"questionId" validate:"required"`
}

type CourseResponse struct {
	Success bool          `json:"success"`
	Course  *model.Course `json:"course"`
}

type CoursePreviewResponse struct {
	Success bool                 `json:"success"`
	Course  *model.CoursePreview `json:"course"`
}

type CoursesResponse struct {
	Success bool                  `json:"success"`
	Courses []model.CoursePreview `json:"courses"`
}

type CourseContentResponse struct {
	Success bool                  `json:"success"`
	Content []model.ContentThread `json:"content"`
}

type QuestionResponse struct {
	Success  bool            `json:"success"`
	Question *model.Question `json:"question"`
}

type AnswerResponse struct {
	Success bool          `json:"success"`
	Answer  *model.Answer `json:"answer"`
}
