package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/repository"
	"github.com/vasapolrittideah/elearning-api/shared/media"
)

// UserUsecase defines the interface for profile use cases. Every profile write
// re-caches the caller's session so gated requests see the new values.
type UserUsecase interface {
	GetUserInfo(ctx context.Context, userID string) (*model.User, error)
	UpdateUserInfo(ctx context.Context, userID string, params UpdateUserInfoParams) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID string, avatar string) (*model.User, error)
}

// UpdateUserInfoParams defines the optional profile fields to change.
type UpdateUserInfoParams struct {
	Name  *string
	Email *string
}

const (
	avatarFolder = "avatars"
	avatarWidth  = 150
)

type userUsecase struct {
	userRepo     repository.UserRepository
	identityRepo repository.IdentityRepository
	sessionRepo  repository.SessionRepository
	uploader     media.Uploader
	logger       *zerolog.Logger
}

func NewUserUsecase(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	uploader media.Uploader,
	logger *zerolog.Logger,
) UserUsecase {
	return &userUsecase{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

func (u *userUsecase) GetUserInfo(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *userUsecase) UpdateUserInfo(
	ctx context.Context,
	userID string,
	params UpdateUserInfoParams,
) (*model.User, error) {
	current, err := u.GetUserInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	var update repository.UpdateUserParams

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name != "" && name != current.Name {
			update.Name = &name
		}
	}

	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if email != "" && email != current.Email {
			if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
				return nil, ErrEmailAlreadyExists
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			update.Email = &email
		}
	}

	if update.Name == nil && update.Email == nil {
		return current, nil
	}

	user, err := u.persist(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	// The user record is the source of truth for the address; the password
	// identity only mirrors it.
	if update.Email != nil {
		if err := u.identityRepo.UpdateIdentityEmail(ctx, userID, model.ProviderEmail, user.Email); err != nil {
			u.logger.Error().Err(err).Str("user_id", userID).Msg("failed to update email identity")
		}
	}

	return user, nil
}

func (u *userUsecase) UpdateAvatar(ctx context.Context, userID string, avatar string) (*model.User, error) {
	current, err := u.GetUserInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	asset, err := u.uploader.Upload(ctx, avatar, media.UploadOptions{Folder: avatarFolder, Width: avatarWidth})
	if err != nil {
		return nil, wrap(ErrAvatarUploadFailed, err)
	}

	if current.Avatar != nil && current.Avatar.PublicID != "" {
		if err := u.uploader.Destroy(ctx, current.Avatar.PublicID); err != nil {
			u.logger.Warn().Err(err).Str("public_id", current.Avatar.PublicID).Msg("failed to destroy previous avatar")
		}
	}

	return u.persist(ctx, userID, repository.UpdateUserParams{Avatar: asset})
}

// persist writes the update to the store and then refreshes the session
// record, keeping its remaining lifetime.
func (u *userUsecase) persist(
	ctx context.Context,
	userID string,
	update repository.UpdateUserParams,
) (*model.User, error) {
	user, err := u.userRepo.UpdateUser(ctx, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrEmailAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	if err := u.sessionRepo.ReplaceSession(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
