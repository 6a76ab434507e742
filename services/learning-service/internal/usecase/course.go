package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/repository"
	"github.com/vasapolrittideah/elearning-api/shared/cache"
	"github.com/vasapolrittideah/elearning-api/shared/mailer"
	"github.com/vasapolrittideah/elearning-api/shared/media"
)

// CourseUsecase defines the interface for catalog and Q&A use cases.
type CourseUsecase interface {
	GetCourse(ctx context.Context, courseID string) (*model.CoursePreview, error)
	ListCourses(ctx context.Context) ([]model.CoursePreview, error)
	GetCourseContent(ctx context.Context, user *model.User, courseID string) ([]model.ContentThread, error)
	CreateCourse(ctx context.Context, params CourseParams) (*model.Course, error)
	EditCourse(ctx context.Context, courseID string, params EditCourseParams) (*model.Course, error)
	AddQuestion(ctx context.Context, user *model.User, params AddQuestionParams) (*model.Question, error)
	AddAnswer(ctx context.Context, user *model.User, params AddAnswerParams) (*model.Answer, error)
}

// CourseParams defines the fields of a new course. Thumbnail is a remote URL
// or a data URI to upload.
type CourseParams struct {
	Name           string
	Description    string
	Price          float64
	EstimatedPrice float64
	Thumbnail      string
	Tags           string
	Level          string
	DemoURL        string
	Benefits       []model.Titled
	Prerequisites  []model.Titled
	Contents       []model.CourseContent
}

// EditCourseParams defines the optional fields to change on a course.
// Only the fields that are not nil will be updated.
type EditCourseParams struct {
	Name           *string
	Description    *string
	Price          *float64
	EstimatedPrice *float64
	Thumbnail      *string
	Tags           *string
	Level          *string
	DemoURL        *string
	Benefits       []model.Titled
	Prerequisites  []model.Titled
	Contents       []model.CourseContent
}

// AddQuestionParams defines the parameters for asking a question on a course section.
type AddQuestionParams struct {
	CourseID  string
	ContentID string
	Question  string
}

// AddAnswerParams defines the parameters for answering a question.
type AddAnswerParams struct {
	CourseID   string
	ContentID  string
	QuestionID string
	Answer     string
}

const (
	thumbnailFolder   = "courses"
	thumbnailWidth    = 500
	replyEmailSubject = "New reply to your question"
)

type courseUsecase struct {
	courseRepo   repository.CourseRepository
	questionRepo repository.QuestionRepository
	cache        *cache.Cache
	cacheTTL     time.Duration
	uploader     media.Uploader
	mailer       mailer.Sender
	logger       *zerolog.Logger
}

func NewCourseUsecase(
	courseRepo repository.CourseRepository,
	questionRepo repository.QuestionRepository,
	courseCache *cache.Cache,
	cacheTTL time.Duration,
	uploader media.Uploader,
	sender mailer.Sender,
	logger *zerolog.Logger,
) CourseUsecase {
	return &courseUsecase{
		courseRepo:   courseRepo,
		questionRepo: questionRepo,
		cache:        courseCache,
		cacheTTL:     cacheTTL,
		uploader:     uploader,
		mailer:       sender,
		logger:       logger,
	}
}

// GetCourse serves the browse projection of a course, reading through the cache.
func (u *courseUsecase) GetCourse(ctx context.Context, courseID string) (*model.CoursePreview, error) {
	if _, err := bson.ObjectIDFromHex(courseID); err != nil {
		return nil, ErrInvalidCourseID
	}

	var cached model.CoursePreview
	if u.readCache(ctx, courseID, &cached) {
		return &cached, nil
	}

	version := u.cacheVersion(ctx, courseID)
	course, err := u.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, u.translateCourseError(err)
	}

	preview := course.Preview()
	u.writeCache(ctx, courseID, version, preview)

	return &preview, nil
}

// ListCourses serves the browse projection of the whole catalog, reading
// through the cache.
func (u *courseUsecase) ListCourses(ctx context.Context) ([]model.CoursePreview, error) {
	var cached []model.CoursePreview
	if u.readCache(ctx, model.CatalogCacheKey, &cached) {
		return cached, nil
	}

	version := u.cacheVersion(ctx, model.CatalogCacheKey)
	courses, err := u.courseRepo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	previews := make([]model.CoursePreview, len(courses))
	for i := range courses {
		previews[i] = courses[i].Preview()
	}
	u.writeCache(ctx, model.CatalogCacheKey, version, previews)

	return previews, nil
}

// GetCourseContent returns every section of an owned course with its full
// learner-only fields and Q&A threads. Only the caller's owned courses count,
// the admin role grants no access here. It never touches the cache.
func (u *courseUsecase) GetCourseContent(
	ctx context.Context,
	user *model.User,
	courseID string,
) ([]model.ContentThread, error) {
	if _, err := bson.ObjectIDFromHex(courseID); err != nil {
		return nil, ErrInvalidCourseID
	}

	if !user.OwnsCourse(courseID) {
		return nil, ErrCourseNotOwned
	}

	course, err := u.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, u.translateCourseError(err)
	}

	threads, err := u.questionRepo.ListThreads(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	byContent := make(map[bson.ObjectID][]model.QuestionThread)
	for _, thread := range threads {
		byContent[thread.ContentID] = append(byContent[thread.ContentID], thread)
	}

	contents := make([]model.ContentThread, len(course.Contents))
	for i, content := range course.Contents {
		questions := byContent[content.ID]
		if questions == nil {
			questions = []model.QuestionThread{}
		}
		contents[i] = model.ContentThread{CourseContent: content, Questions: questions}
	}

	return contents, nil
}

func (u *courseUsecase) CreateCourse(ctx context.Context, params CourseParams) (*model.Course, error) {
	course := &model.Course{
		Name:           strings.TrimSpace(params.Name),
		Description:    params.Description,
		Price:          params.Price,
		EstimatedPrice: params.EstimatedPrice,
		Tags:           params.Tags,
		Level:          params.Level,
		DemoURL:        params.DemoURL,
		Benefits:       nonNil(params.Benefits),
		Prerequisites:  nonNil(params.Prerequisites),
		Reviews:        []model.Review{},
		Contents:       withContentIDs(params.Contents),
	}

	if params.Thumbnail != "" {
		asset, err := u.uploader.Upload(ctx, params.Thumbnail, media.UploadOptions{
			Folder: thumbnailFolder,
			Width:  thumbnailWidth,
		})
		if err != nil {
			return nil, wrap(ErrThumbnailUploadFailed, err)
		}
		course.Thumbnail = asset
	}

	created, err := u.courseRepo.CreateCourse(ctx, course)
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, model.CatalogCacheKey)

	return created, nil
}

// EditCourse applies the update and drops the cached browse projections of
// the course and the catalog, so the next browse read sees the edit.
func (u *courseUsecase) EditCourse(
	ctx context.Context,
	courseID string,
	params EditCourseParams,
) (*model.Course, error) {
	if _, err := bson.ObjectIDFromHex(courseID); err != nil {
		return nil, ErrInvalidCourseID
	}

	existing, err := u.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, u.translateCourseError(err)
	}

	update := repository.UpdateCourseParams{
		Name:           params.Name,
		Description:    params.Description,
		Price:          params.Price,
		EstimatedPrice: params.EstimatedPrice,
		Tags:           params.Tags,
		Level:          params.Level,
		DemoURL:        params.DemoURL,
		Benefits:       params.Benefits,
		Prerequisites:  params.Prerequisites,
	}
	if params.Contents != nil {
		update.Contents = withContentIDs(params.Contents)
	}

	if params.Thumbnail != nil && *params.Thumbnail != "" &&
		(existing.Thumbnail == nil || existing.Thumbnail.URL != *params.Thumbnail) {
		asset, err := u.uploader.Upload(ctx, *params.Thumbnail, media.UploadOptions{
			Folder: thumbnailFolder,
			Width:  thumbnailWidth,
		})
		if err != nil {
			return nil, wrap(ErrThumbnailUploadFailed, err)
		}
		update.Thumbnail = asset

		if existing.Thumbnail != nil && existing.Thumbnail.PublicID != "" {
			if err := u.uploader.Destroy(ctx, existing.Thumbnail.PublicID); err != nil {
				u.logger.Warn().Err(err).Str("public_id", existing.Thumbnail.PublicID).
					Msg("failed to destroy previous thumbnail")
			}
		}
	}

	course, err := u.courseRepo.UpdateCourse(ctx, courseID, update)
	if err != nil {
		return nil, u.translateCourseError(err)
	}

	u.invalidate(ctx, courseID, model.CatalogCacheKey)

	return course, nil
}

func (u *courseUsecase) AddQuestion(
	ctx context.Context,
	user *model.User,
	params AddQuestionParams,
) (*model.Question, error) {
	course, content, err := u.accessibleContent(ctx, user, params.CourseID, params.ContentID)
	if err != nil {
		return nil, err
	}

	return u.questionRepo.CreateQuestion(ctx, &model.Question{
		CourseID:  course.ID,
		ContentID: content.ID,
		Author:    authorOf(user),
		Text:      strings.TrimSpace(params.Question),
	})
}

// AddAnswer stores the answer and notifies the question's author by email,
// unless the author answered their own question.
func (u *courseUsecase) AddAnswer(
	ctx context.Context,
	user *model.User,
	params AddAnswerParams,
) (*model.Answer, error) {
	course, content, err := u.accessibleContent(ctx, user, params.CourseID, params.ContentID)
	if err != nil {
		return nil, err
	}

	if _, err := bson.ObjectIDFromHex(params.QuestionID); err != nil {
		return nil, ErrInvalidQuestionID
	}

	question, err := u.questionRepo.GetQuestion(ctx, params.QuestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if question.CourseID != course.ID || question.ContentID != content.ID {
		return nil, ErrQuestionNotFound
	}

	answer, err := u.questionRepo.CreateAnswer(ctx, &model.Answer{
		QuestionID: question.ID,
		Author:     authorOf(user),
		Text:       strings.TrimSpace(params.Answer),
	})
	if err != nil {
		return nil, err
	}

	if question.Author.UserID == user.ID.Hex() || question.Author.Email == "" {
		return answer, nil
	}

	if err := u.mailer.SendTemplate(mailer.TemplateEmail{
		To:       []string{question.Author.Email},
		Subject:  replyEmailSubject,
		Template: mailer.TemplateQuestionReply,
		Data: map[string]any{
			"Name":         question.Author.Name,
			"ContentTitle": content.Title,
		},
	}); err != nil {
		return nil, wrap(ErrReplyMailFailed, err)
	}

	return answer, nil
}

// accessibleContent resolves a course section the user may discuss: the user
// must own the course or be an admin.
func (u *courseUsecase) accessibleContent(
	ctx context.Context,
	user *model.User,
	courseID, contentID string,
) (*model.Course, *model.CourseContent, error) {
	if _, err := bson.ObjectIDFromHex(courseID); err != nil {
		return nil, nil, ErrInvalidCourseID
	}
	contentObjectID, err := bson.ObjectIDFromHex(contentID)
	if err != nil {
		return nil, nil, ErrInvalidContentID
	}

	if !user.OwnsCourse(courseID) && !user.HasRole(model.RoleAdmin) {
		return nil, nil, ErrCourseNotOwned
	}

	course, err := u.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, nil, u.translateCourseError(err)
	}

	content, ok := course.Content(contentObjectID)
	if !ok {
		return nil, nil, ErrContentNotFound
	}

	return course, content, nil
}

// readCache reports whether key was found and decoded into dest. Cache
// failures are logged and treated as a miss.
func (u *courseUsecase) readCache(ctx context.Context, key string, dest any) bool {
	found, err := u.cache.Get(ctx, key, dest)
	if err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("course cache read failed")
		return false
	}
	return found
}

// cacheVersion reads the invalidation counter of key before a store read.
// It returns -1 when the counter is unavailable, which skips the later write.
func (u *courseUsecase) cacheVersion(ctx context.Context, key string) int64 {
	version, err := u.cache.Version(ctx, key)
	if err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("course cache version read failed")
		return -1
	}
	return version
}

// writeCache stores a projection read at version. An edit that landed after
// the store read has bumped the version, so the stale projection is dropped.
func (u *courseUsecase) writeCache(ctx context.Context, key string, version int64, value any) {
	if version < 0 {
		return
	}

	stored, err := u.cache.SetIfVersion(ctx, key, value, u.cacheTTL, version)
	if err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("course cache write failed")
		return
	}
	if !stored {
		u.logger.Debug().Str("key", key).Msg("course cache write skipped after invalidation")
	}
}

func (u *courseUsecase) invalidate(ctx context.Context, keys ...string) {
	if err := u.cache.Invalidate(ctx, keys...); err != nil {
		u.logger.Error().Err(err).Strs("keys", keys).Msg("course cache invalidation failed")
	}
}

func (u *courseUsecase) translateCourseError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrCourseNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidCourseID
	default:
		return err
	}
}

func authorOf(user *model.User) model.Author {
	return model.Author{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
	}
}

func withContentIDs(contents []model.CourseContent) []model.CourseContent {
	out := make([]model.CourseContent, len(contents))
	for i, content := range contents {
		if content.ID.IsZero() {
			content.ID = bson.NewObjectID()
		}
		if content.Links == nil {
			content.Links = []model.Link{}
		}
		out[i] = content
	}
	return out
}

func nonNil(items []model.Titled) []model.Titled {
	if items == nil {
		return []model.Titled{}
	}
	return items
}
