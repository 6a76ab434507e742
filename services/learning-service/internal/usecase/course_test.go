package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/shared/apperror"
	"github.com/vasapolrittideah/elearning-api/shared/cache"
	"github.com/vasapolrittideah/elearning-api/shared/mailer"
	"github.com/vasapolrittideah/elearning-api/shared/media"
)

type courseFixture struct {
	usecase   CourseUsecase
	courses   *fakeCourseRepository
	questions *fakeQuestionRepository
	uploader  *fakeUploader
	mailer    *fakeMailer
	cache     *cache.Cache
	redis     *miniredis.Miniredis
}

func newCourseFixture(t *testing.T, ttl time.Duration, courses ...model.Course) *courseFixture {
	t.Helper()

	c, mr := newTestCache(t)
	f := &courseFixture{
		courses:   newFakeCourseRepository(courses...),
		questions: &fakeQuestionRepository{},
		uploader:  &fakeUploader{},
		mailer:    &fakeMailer{},
		cache:     c,
		redis:     mr,
	}
	f.usecase = NewCourseUsecase(f.courses, f.questions, c, ttl, f.uploader, f.mailer, nopLogger())
	return f
}

func sampleCourse() model.Course {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return model.Course{
		ID:            bson.NewObjectID(),
		Name:          "Go in Practice",
		Description:   "Services and tooling",
		Price:         49,
		Tags:          "go,backend",
		Level:         "intermediate",
		Benefits:      []model.Titled{{Title: "Ship services"}},
		Prerequisites: []model.Titled{{Title: "Basic programming"}},
		Reviews:       []model.Review{},
		Contents: []model.CourseContent{
			{
				ID:           bson.NewObjectID(),
				Title:        "Getting started",
				VideoURL:     "secret-video-id",
				VideoSection: "Intro",
				VideoLength:  12,
				Links:        []model.Link{{Title: "Docs", URL: "https://go.dev/doc"}},
				Suggestion:   "Read the tour first",
			},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestCourseUsecase_GetCourseReadsThroughCache(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	first, err := f.usecase.GetCourse(ctx, course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, course.Name, first.Name)
	assert.Equal(t, 1, f.courses.readCount())

	raw, err := f.redis.Get(course.ID.Hex())
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret-video-id")
	assert.NotContains(t, raw, "Read the tour first")
	assert.NotContains(t, raw, "go.dev/doc")
	assert.Equal(t, time.Duration(0), f.redis.TTL(course.ID.Hex()))

	second, err := f.usecase.GetCourse(ctx, course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.courses.readCount())
}

func TestCourseUsecase_ConcurrentMissesAgree(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	const readers = 8
	results := make([]*model.CoursePreview, readers)
	errs := make([]error, readers)

	var wg sync.WaitGroup
	for i := range readers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.usecase.GetCourse(ctx, course.ID.Hex())
		}(i)
	}
	wg.Wait()

	for i := range readers {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	var cached model.CoursePreview
	found, err := f.cache.Get(ctx, course.ID.Hex(), &cached)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, *results[0], cached)
}

func TestCourseUsecase_GetCourseErrors(t *testing.T) {
	f := newCourseFixture(t, 0)

	_, err := f.usecase.GetCourse(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidCourseID)

	_, err = f.usecase.GetCourse(context.Background(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestCourseUsecase_CacheTTLBoundsStaleness(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 10*time.Minute, course)

	_, err := f.usecase.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, f.redis.TTL(model.CatalogCacheKey))
}

func TestCourseUsecase_CacheOutageFallsBackToStore(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	f.redis.Close()

	got, err := f.usecase.GetCourse(context.Background(), course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, course.Name, got.Name)
}

func TestCourseUsecase_ListCoursesCachesCatalog(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	list, err := f.usecase.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, f.redis.Exists(model.CatalogCacheKey))

	again, err := f.usecase.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)
	assert.Equal(t, 1, f.courses.readCount())
}

func TestCourseUsecase_EditIsVisibleOnNextBrowseRead(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	_, err := f.usecase.GetCourse(ctx, course.ID.Hex())
	require.NoError(t, err)
	_, err = f.usecase.ListCourses(ctx)
	require.NoError(t, err)

	_, err = f.usecase.EditCourse(ctx, course.ID.Hex(), EditCourseParams{Name: strPtr("Go in Production")})
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(course.ID.Hex()))
	assert.False(t, f.redis.Exists(model.CatalogCacheKey))

	got, err := f.usecase.GetCourse(ctx, course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Go in Production", got.Name)

	list, err := f.usecase.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Go in Production", list[0].Name)
}

// editingCourseRepository runs onRead once, after the first course read has
// taken its snapshot and before it is returned to the caller.
type editingCourseRepository struct {
	*fakeCourseRepository
	onRead func()
}

func (r *editingCourseRepository) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := r.fakeCourseRepository.GetCourse(ctx, id)
	if hook := r.onRead; hook != nil {
		r.onRead = nil
		hook()
	}
	return course, err
}

func TestCourseUsecase_EditDuringMissDoesNotCacheStaleCourse(t *testing.T) {
	course := sampleCourse()
	c, mr := newTestCache(t)
	repo := &editingCourseRepository{fakeCourseRepository: newFakeCourseRepository(course)}
	uc := NewCourseUsecase(repo, &fakeQuestionRepository{}, c, 0, &fakeUploader{}, &fakeMailer{}, nopLogger())
	ctx := context.Background()

	repo.onRead = func() {
		_, err := uc.EditCourse(ctx, course.ID.Hex(), EditCourseParams{Name: strPtr("Go in Production")})
		require.NoError(t, err)
	}

	stale, err := uc.GetCourse(ctx, course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Go in Practice", stale.Name)
	assert.False(t, mr.Exists(course.ID.Hex()))

	got, err := uc.GetCourse(ctx, course.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Go in Production", got.Name)
	assert.True(t, mr.Exists(course.ID.Hex()))
}

func TestCourseUsecase_EditReplacesThumbnail(t *testing.T) {
	course := sampleCourse()
	course.Thumbnail = &media.Asset{PublicID: "courses/old", URL: "https://cdn/old.png"}
	f := newCourseFixture(t, 0, course)

	edited, err := f.usecase.EditCourse(context.Background(), course.ID.Hex(), EditCourseParams{
		Thumbnail: strPtr("https://example.com/new.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new.png", edited.Thumbnail.URL)
	assert.Equal(t, []string{"courses/old"}, f.uploader.destroyed)

	// Re-submitting the current thumbnail URL does not upload again.
	_, err = f.usecase.EditCourse(context.Background(), course.ID.Hex(), EditCourseParams{
		Thumbnail: strPtr("https://example.com/new.png"),
	})
	require.NoError(t, err)
	assert.Len(t, f.uploader.uploads, 1)
}

func TestCourseUsecase_CreateCourse(t *testing.T) {
	f := newCourseFixture(t, 0)
	ctx := context.Background()

	_, err := f.usecase.ListCourses(ctx)
	require.NoError(t, err)
	require.True(t, f.redis.Exists(model.CatalogCacheKey))

	created, err := f.usecase.CreateCourse(ctx, CourseParams{
		Name:      "New course",
		Thumbnail: "data:image/png;base64,AAAA",
		Contents:  []model.CourseContent{{Title: "One"}, {Title: "Two"}},
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	require.NotNil(t, created.Thumbnail)
	assert.Equal(t, media.UploadOptions{Folder: "courses", Width: 500}, f.uploader.uploads[0])
	require.Len(t, created.Contents, 2)
	assert.False(t, created.Contents[0].ID.IsZero())
	assert.NotEqual(t, created.Contents[0].ID, created.Contents[1].ID)
	assert.False(t, f.redis.Exists(model.CatalogCacheKey))

	list, err := f.usecase.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCourseUsecase_CreateCourseUploadFailure(t *testing.T) {
	f := newCourseFixture(t, 0)
	f.uploader.err = errUpstream

	_, err := f.usecase.CreateCourse(context.Background(), CourseParams{Name: "X", Thumbnail: "https://example.com/x.png"})
	assert.ErrorIs(t, err, ErrThumbnailUploadFailed)
	assert.Equal(t, apperror.UpstreamFailure, apperror.KindOf(err))
}

func learner(courseIDs ...string) *model.User {
	user := &model.User{ID: bson.NewObjectID(), Name: "Learner", Email: "learner@example.com", Role: model.RoleUser}
	for _, id := range courseIDs {
		user.Courses = append(user.Courses, model.OwnedCourse{CourseID: id})
	}
	return user
}

func TestCourseUsecase_GetCourseContentRequiresOwnership(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	_, err := f.usecase.GetCourseContent(ctx, learner(), course.ID.Hex())
	assert.ErrorIs(t, err, ErrCourseNotOwned)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	admin := learner()
	admin.Role = model.RoleAdmin
	_, err = f.usecase.GetCourseContent(ctx, admin, course.ID.Hex())
	assert.ErrorIs(t, err, ErrCourseNotOwned)

	owner := learner(course.ID.Hex())
	_, err = f.usecase.AddQuestion(ctx, owner, AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: course.Contents[0].ID.Hex(),
		Question:  "How do I start?",
	})
	require.NoError(t, err)

	contents, err := f.usecase.GetCourseContent(ctx, owner, course.ID.Hex())
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "secret-video-id", contents[0].VideoURL)
	assert.Equal(t, "Read the tour first", contents[0].Suggestion)
	require.Len(t, contents[0].Questions, 1)
	assert.Equal(t, "How do I start?", contents[0].Questions[0].Text)
	assert.False(t, f.redis.Exists(course.ID.Hex()))
}

func TestCourseUsecase_AddQuestionValidation(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()
	owner := learner(course.ID.Hex())

	_, err := f.usecase.AddQuestion(ctx, owner, AddQuestionParams{CourseID: course.ID.Hex(), ContentID: "bad", Question: "?"})
	assert.ErrorIs(t, err, ErrInvalidContentID)

	_, err = f.usecase.AddQuestion(ctx, owner, AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: bson.NewObjectID().Hex(),
		Question:  "?",
	})
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = f.usecase.AddQuestion(ctx, learner(), AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: course.Contents[0].ID.Hex(),
		Question:  "?",
	})
	assert.ErrorIs(t, err, ErrCourseNotOwned)

	admin := learner()
	admin.Role = model.RoleAdmin
	_, err = f.usecase.AddQuestion(ctx, admin, AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: course.Contents[0].ID.Hex(),
		Question:  "Admin note",
	})
	assert.NoError(t, err)
}

func TestCourseUsecase_AddAnswerNotifiesAuthor(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	asker := learner(course.ID.Hex())
	asker.Email = "asker@example.com"
	question, err := f.usecase.AddQuestion(ctx, asker, AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: course.Contents[0].ID.Hex(),
		Question:  "Why?",
	})
	require.NoError(t, err)

	admin := learner()
	admin.Role = model.RoleAdmin
	answer, err := f.usecase.AddAnswer(ctx, admin, AddAnswerParams{
		CourseID:   course.ID.Hex(),
		ContentID:  course.Contents[0].ID.Hex(),
		QuestionID: question.ID.Hex(),
		Answer:     "Because.",
	})
	require.NoError(t, err)
	assert.Equal(t, question.ID, answer.QuestionID)

	sent := f.mailer.last()
	assert.Equal(t, []string{"asker@example.com"}, sent.To)
	assert.Equal(t, mailer.TemplateQuestionReply, sent.Template)
}

func TestCourseUsecase_AddAnswerToOwnQuestionSkipsMail(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()
	owner := learner(course.ID.Hex())

	question, err := f.usecase.AddQuestion(ctx, owner, AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: course.Contents[0].ID.Hex(),
		Question:  "Note to self",
	})
	require.NoError(t, err)

	_, err = f.usecase.AddAnswer(ctx, owner, AddAnswerParams{
		CourseID:   course.ID.Hex(),
		ContentID:  course.Contents[0].ID.Hex(),
		QuestionID: question.ID.Hex(),
		Answer:     "Found it",
	})
	require.NoError(t, err)
	assert.Empty(t, f.mailer.sent)
}

func TestCourseUsecase_AddAnswerMailFailureAfterStore(t *testing.T) {
	course := sampleCourse()
	f := newCourseFixture(t, 0, course)
	ctx := context.Background()

	asker := learner(course.ID.Hex())
	question, err := f.usecase.AddQuestion(ctx, asker, AddQuestionParams{
		CourseID:  course.ID.Hex(),
		ContentID: course.Contents[0].ID.Hex(),
		Question:  "Why?",
	})
	require.NoError(t, err)

	f.mailer.err = errUpstream
	_, err = f.usecase.AddAnswer(ctx, learner(course.ID.Hex()), AddAnswerParams{
		CourseID:   course.ID.Hex(),
		ContentID:  course.Contents[0].ID.Hex(),
		QuestionID: question.ID.Hex(),
		Answer:     "Because.",
	})
	assert.ErrorIs(t, err, ErrReplyMailFailed)
	assert.Equal(t, apperror.UpstreamFailure, apperror.KindOf(err))
	assert.Len(t, f.questions.answers, 1)
}

func TestCourseUsecase_AddAnswerRejectsForeignQuestion(t *testing.T) {
	course := sampleCourse()
	other := sampleCourse()
	f := newCourseFixture(t, 0, course, other)
	ctx := context.Background()
	user := learner(course.ID.Hex(), other.ID.Hex())

	question, err := f.usecase.AddQuestion(ctx, user, AddQuestionParams{
		CourseID:  other.ID.Hex(),
		ContentID: other.Contents[0].ID.Hex(),
		Question:  "Elsewhere",
	})
	require.NoError(t, err)

	_, err = f.usecase.AddAnswer(ctx, user, AddAnswerParams{
		CourseID:   course.ID.Hex(),
		ContentID:  course.Contents[0].ID.Hex(),
		QuestionID: question.ID.Hex(),
		Answer:     "Mismatch",
	})
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	_, err = f.usecase.AddAnswer(ctx, user, AddAnswerParams{
		CourseID:   course.ID.Hex(),
		ContentID:  course.Contents[0].ID.Hex(),
		QuestionID: "bad",
		Answer:     "x",
	})
	assert.ErrorIs(t, err, ErrInvalidQuestionID)
}
