package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/repository"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/pkg/types"
	"github.com/vasapolrittideah/elearning-api/shared/auth"
	"github.com/vasapolrittideah/elearning-api/shared/mailer"
	"github.com/vasapolrittideah/elearning-api/shared/security"
)

// ActivationUsecase defines the interface for account registration and activation.
// No pending registration is stored server-side; it travels inside the activation token.
type ActivationUsecase interface {
	Register(ctx context.Context, params RegisterParams) (string, error)
	Activate(ctx context.Context, params ActivateParams) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// ActivateParams defines the parameters for confirming a registration.
type ActivateParams struct {
	ActivationToken string
	ActivationCode  string
}

const activationEmailSubject = "Activate your account"

type activationUsecase struct {
	userRepo       repository.UserRepository
	identityRepo   repository.IdentityRepository
	activationRepo repository.ActivationRepository
	mailer         mailer.Sender
	jwtAuth        auth.JWTAuthenticator
	tokenCfg       config.TokenConfig
	logger         *zerolog.Logger
	now            func() time.Time
}

func NewActivationUsecase(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	activationRepo repository.ActivationRepository,
	sender mailer.Sender,
	jwtAuth auth.JWTAuthenticator,
	tokenCfg config.TokenConfig,
	logger *zerolog.Logger,
) ActivationUsecase {
	return &activationUsecase{
		userRepo:       userRepo,
		identityRepo:   identityRepo,
		activationRepo: activationRepo,
		mailer:         sender,
		jwtAuth:        jwtAuth,
		tokenCfg:       tokenCfg,
		logger:         logger,
		now:            time.Now,
	}
}

func (u *activationUsecase) Register(ctx context.Context, params RegisterParams) (string, error) {
	email := normalizeEmail(params.Email)

	if err := u.ensureEmailAvailable(ctx, email); err != nil {
		return "", err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return "", err
	}

	code, err := generateActivationCode()
	if err != nil {
		return "", err
	}

	pending := types.PendingUser{
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: passwordHash,
	}

	token, err := u.jwtAuth.GenerateToken(types.ActivationClaims{
		User:             pending,
		ActivationCode:   code,
		RegisteredClaims: u.jwtAuth.RegisteredClaims(email, u.now(), u.tokenCfg.ActivationTokenExpiresIn),
	}, u.tokenCfg.ActivationTokenSecret)
	if err != nil {
		return "", err
	}

	if err := u.mailer.SendTemplate(mailer.TemplateEmail{
		To:       []string{email},
		Subject:  activationEmailSubject,
		Template: mailer.TemplateActivation,
		Data: map[string]any{
			"Name":           pending.Name,
			"ActivationCode": code,
			"ExpiresIn":      humanizeDuration(u.tokenCfg.ActivationTokenExpiresIn),
		},
	}); err != nil {
		return "", wrap(ErrActivationMailFailed, err)
	}

	return token, nil
}

func (u *activationUsecase) Activate(ctx context.Context, params ActivateParams) (*model.User, error) {
	var claims types.ActivationClaims
	if _, err := u.jwtAuth.ValidateTokenWithClaims(
		params.ActivationToken,
		u.tokenCfg.ActivationTokenSecret,
		&claims,
	); err != nil {
		return nil, wrap(ErrActivationTokenInvalid, err)
	}

	if subtle.ConstantTimeCompare([]byte(params.ActivationCode), []byte(claims.ActivationCode)) != 1 {
		return nil, ErrInvalidActivationCode
	}

	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrActivationTokenInvalid
	}

	ttl := claims.ExpiresAt.Sub(u.now())
	if ttl < time.Second {
		ttl = time.Second
	}

	claimed, err := u.activationRepo.ClaimActivation(ctx, claims.ID, ttl)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrActivationTokenUsed
	}

	user, err := u.createActivatedUser(ctx, claims.User)
	if err != nil {
		if !errors.Is(err, ErrEmailAlreadyExists) {
			if releaseErr := u.activationRepo.ReleaseActivation(ctx, claims.ID); releaseErr != nil {
				u.logger.Warn().Err(releaseErr).Msg("failed to release activation marker")
			}
		}
		return nil, err
	}

	return user, nil
}

func (u *activationUsecase) createActivatedUser(ctx context.Context, pending types.PendingUser) (*model.User, error) {
	email := normalizeEmail(pending.Email)

	// The email may have been claimed since the token was issued.
	if err := u.ensureEmailAvailable(ctx, email); err != nil {
		return nil, err
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         pending.Name,
		Email:        email,
		PasswordHash: pending.PasswordHash,
		Verified:     true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	user.PasswordHash = ""

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		UserID:     user.ID.Hex(),
		Provider:   model.ProviderEmail,
		ProviderID: user.ID.Hex(),
		Email:      email,
	}); err != nil {
		u.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to record email identity")
	}

	return user, nil
}

func (u *activationUsecase) ensureEmailAvailable(ctx context.Context, email string) error {
	_, err := u.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailAlreadyExists
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

// generateActivationCode returns a random four-digit code between 1000 and 9999.
func generateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

func humanizeDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return d.String()
}
