package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/usecase"
	"github.com/vasapolrittideah/elearning-api/shared/response"
)

// stubAuthUsecase authorizes tokens from a fixed table.
type stubAuthUsecase struct {
	usecase.AuthUsecase
	sessions map[string]*model.User
	err      error
}

func (s *stubAuthUsecase) Authorize(_ context.Context, token string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token == "" {
		return nil, usecase.ErrLoginRequired
	}
	user, ok := s.sessions[token]
	if !ok {
		return nil, usecase.ErrSessionExpired
	}
	return user, nil
}

func newTestRouter(auth usecase.AuthUsecase) http.Handler {
	logger := zerolog.Nop()
	authMiddleware := NewAuthMiddleware(auth, &logger)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			response.JSON(w, http.StatusOK, map[string]string{"id": user.ID.Hex()})
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRoles(model.RoleAdmin))
			r.Post("/create-course", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			})
		})
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireAuth(t *testing.T) {
	user := &model.User{ID: bson.NewObjectID(), Role: model.RoleUser}
	router := newTestRouter(&stubAuthUsecase{sessions: map[string]*model.User{"good": user}})

	t.Run("attaches session user", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/me", "good")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), user.ID.Hex())
	})

	t.Run("missing cookie", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeError(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "Please login to access this resource", body.Message)
	})

	t.Run("session gone", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/me", "logged-out")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Please login again", decodeError(t, rec).Message)
	})
}

func TestRequireAuth_InternalErrorIsHidden(t *testing.T) {
	router := newTestRouter(&stubAuthUsecase{err: errors.New("redis: connection refused")})

	rec := doRequest(t, router, http.MethodGet, "/me", "any")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestRequireRoles(t *testing.T) {
	learner := &model.User{ID: bson.NewObjectID(), Role: model.RoleUser}
	admin := &model.User{ID: bson.NewObjectID(), Role: model.RoleAdmin}
	router := newTestRouter(&stubAuthUsecase{sessions: map[string]*model.User{
		"learner": learner,
		"admin":   admin,
	}})

	rec := doRequest(t, router, http.MethodPost, "/create-course", "learner")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Role: user is not allowed to access this resource", decodeError(t, rec).Message)

	rec = doRequest(t, router, http.MethodPost, "/create-course", "admin")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	h := RequireRoles(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := AccessLog(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nope"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "/missing", event["path"])
	assert.Equal(t, float64(http.StatusNotFound), event["status"])
	assert.Equal(t, float64(4), event["bytes"])
}
