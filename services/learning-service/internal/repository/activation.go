package repository

import (
	"context"
	"time"

	"github.com/vasapolrittideah/elearning-api/shared/cache"
)

const activationKeyPrefix = "activation:"

// ActivationRepository records which activation tokens have been consumed.
type ActivationRepository interface {
	// ClaimActivation marks the token identified by tokenID as used for ttl.
	// It reports false when the token was already claimed.
	ClaimActivation(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
	ReleaseActivation(ctx context.Context, tokenID string) error
}

type activationRedisRepository struct {
	cache *cache.Cache
}

func NewActivationRedisRepository(c *cache.Cache) ActivationRepository {
	return &activationRedisRepository{cache: c}
}

func (r *activationRedisRepository) ClaimActivation(
	ctx context.Context,
	tokenID string,
	ttl time.Duration,
) (bool, error) {
	return r.cache.SetIfAbsent(ctx, activationKeyPrefix+tokenID, time.Now().Unix(), ttl)
}

func (r *activationRedisRepository) ReleaseActivation(ctx context.Context, tokenID string) error {
	return r.cache.Delete(ctx, activationKeyPrefix+tokenID)
}
