package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/shared/cache"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the interface for session record operations.
// A session record is the user as of the last login or profile update.
type SessionRepository interface {
	SaveSession(ctx context.Context, user *model.User, ttl time.Duration) error
	GetSession(ctx context.Context, userID string) (*model.User, error)
	ReplaceSession(ctx context.Context, user *model.User) error
	DeleteSession(ctx context.Context, userID string) error
}

type sessionRedisRepository struct {
	cache *cache.Cache
}

func NewSessionRedisRepository(c *cache.Cache) SessionRepository {
	return &sessionRedisRepository{cache: c}
}

func (r *sessionRedisRepository) SaveSession(ctx context.Context, user *model.User, ttl time.Duration) error {
	return r.cache.Set(ctx, model.SessionKey(user.ID.Hex()), user, ttl)
}

func (r *sessionRedisRepository) GetSession(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	found, err := r.cache.Get(ctx, model.SessionKey(userID), &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	return &user, nil
}

// ReplaceSession overwrites an existing session record without extending it.
// A user without a live session is left logged out.
func (r *sessionRedisRepository) ReplaceSession(ctx context.Context, user *model.User) error {
	_, err := r.cache.Replace(ctx, model.SessionKey(user.ID.Hex()), user)
	return err
}

func (r *sessionRedisRepository) DeleteSession(ctx context.Context, userID string) error {
	return r.cache.Delete(ctx, model.SessionKey(userID))
}
