package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/repository"
	"github.com/vasapolrittideah/elearning-api/shared/cache"
	"github.com/vasapolrittideah/elearning-api/shared/mailer"
	"github.com/vasapolrittideah/elearning-api/shared/media"
	"github.com/vasapolrittideah/elearning-api/shared/provider"
)

var testTokenConfig = config.TokenConfig{
	Issuer:                   "elearning-test",
	AccessTokenSecret:        "access-secret",
	RefreshTokenSecret:       "refresh-secret",
	ActivationTokenSecret:    "activation-secret",
	AccessTokenExpiresIn:     5 * time.Minute,
	RefreshTokenExpiresIn:    72 * time.Hour,
	ActivationTokenExpiresIn: 5 * time.Minute,
	SessionTTL:               30 * 24 * time.Hour,
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.New(client, ""), mr
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

type fakeUserRepository struct {
	mu    sync.Mutex
	users map[bson.ObjectID]model.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[bson.ObjectID]model.User{}}
}

func (r *fakeUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, repository.ErrDuplicateKey
		}
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	r.users[user.ID] = *user
	return user, nil
}

func (r *fakeUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.PasswordHash = ""
	return &user, nil
}

func (r *fakeUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.GetUserCredentials(ctx, email)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (r *fakeUserRepository) GetUserCredentials(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepository) UpdateUser(
	_ context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Avatar != nil {
		user.Avatar = params.Avatar
	}
	r.users[objectID] = user

	user.PasswordHash = ""
	return &user, nil
}

func (r *fakeUserRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeIdentityRepository struct {
	mu         sync.Mutex
	identities []model.Identity
	lastLogins []string
	updateErr  error
}

func (r *fakeIdentityRepository) CreateIdentity(_ context.Context, identity *model.Identity) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity.ID = bson.NewObjectID()
	r.identities = append(r.identities, *identity)
	return identity, nil
}

func (r *fakeIdentityRepository) GetIdentityByProvider(
	_ context.Context,
	providerID string,
	provider string,
) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, identity := range r.identities {
		if identity.ProviderID == providerID && identity.Provider == provider {
			return &identity, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeIdentityRepository) UpdateLastLogin(_ context.Context, userID string, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastLogins = append(r.lastLogins, provider+":"+userID)
	return nil
}

func (r *fakeIdentityRepository) UpdateIdentityEmail(
	_ context.Context,
	userID string,
	provider string,
	email string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	for i := range r.identities {
		if r.identities[i].UserID == userID && r.identities[i].Provider == provider {
			r.identities[i].Email = email
		}
	}
	return nil
}

type fakeCourseRepository struct {
	mu      sync.Mutex
	courses map[bson.ObjectID]model.Course
	reads   int
}

func newFakeCourseRepository(courses ...model.Course) *fakeCourseRepository {
	r := &fakeCourseRepository{courses: map[bson.ObjectID]model.Course{}}
	for _, course := range courses {
		r.courses[course.ID] = course
	}
	return r
}

func (r *fakeCourseRepository) CreateCourse(_ context.Context, course *model.Course) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	course.ID = bson.NewObjectID()
	r.courses[course.ID] = *course
	return course, nil
}

func (r *fakeCourseRepository) GetCourse(_ context.Context, id string) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reads++
	course, ok := r.courses[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &course, nil
}

func (r *fakeCourseRepository) ListCourses(_ context.Context) ([]model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reads++
	courses := make([]model.Course, 0, len(r.courses))
	for _, course := range r.courses {
		courses = append(courses, course)
	}
	return courses, nil
}

func (r *fakeCourseRepository) UpdateCourse(
	_ context.Context,
	id string,
	params repository.UpdateCourseParams,
) (*model.Course, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	course, ok := r.courses[objectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.Name != nil {
		course.Name = *params.Name
	}
	if params.Price != nil {
		course.Price = *params.Price
	}
	if params.Thumbnail != nil {
		course.Thumbnail = params.Thumbnail
	}
	if params.Contents != nil {
		course.Contents = params.Contents
	}
	r.courses[objectID] = course
	return &course, nil
}

func (r *fakeCourseRepository) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type fakeQuestionRepository struct {
	mu        sync.Mutex
	questions []model.Question
	answers   []model.Answer
}

func (r *fakeQuestionRepository) CreateQuestion(_ context.Context, question *model.Question) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	question.ID = bson.NewObjectID()
	r.questions = append(r.questions, *question)
	return question, nil
}

func (r *fakeQuestionRepository) GetQuestion(_ context.Context, id string) (*model.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, question := range r.questions {
		if question.ID.Hex() == id {
			return &question, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeQuestionRepository) CreateAnswer(_ context.Context, answer *model.Answer) (*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	answer.ID = bson.NewObjectID()
	r.answers = append(r.answers, *answer)
	return answer, nil
}

func (r *fakeQuestionRepository) ListThreads(_ context.Context, courseID bson.ObjectID) ([]model.QuestionThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	threads := []model.QuestionThread{}
	for _, question := range r.questions {
		if question.CourseID != courseID {
			continue
		}
		thread := model.QuestionThread{Question: question, Answers: []model.Answer{}}
		for _, answer := range r.answers {
			if answer.QuestionID == question.ID {
				thread.Answers = append(thread.Answers, answer)
			}
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.TemplateEmail
	err  error
}

func (m *fakeMailer) SendTemplate(email mailer.TemplateEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) last() mailer.TemplateEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fakeUploader struct {
	uploads   []media.UploadOptions
	destroyed []string
	err       error
}

func (u *fakeUploader) Upload(_ context.Context, file string, opts media.UploadOptions) (*media.Asset, error) {
	if u.err != nil {
		return nil, u.err
	}
	u.uploads = append(u.uploads, opts)
	return &media.Asset{PublicID: opts.Folder + "/" + bson.NewObjectID().Hex(), URL: file}, nil
}

func (u *fakeUploader) Destroy(_ context.Context, publicID string) error {
	u.destroyed = append(u.destroyed, publicID)
	return nil
}

type fakeGoogleVerifier struct {
	identity *provider.GoogleIdentity
	err      error
}

func (v *fakeGoogleVerifier) ValidateIDToken(_ context.Context, _ string) (*provider.GoogleIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

var errUpstream = errors.New("upstream unavailable")
