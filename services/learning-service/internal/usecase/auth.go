package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/model"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/repository"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/pkg/types"
	"github.com/vasapolrittideah/elearning-api/shared/auth"
	"github.com/vasapolrittideah/elearning-api/shared/media"
	"github.com/vasapolrittideah/elearning-api/shared/provider"
	"github.com/vasapolrittideah/elearning-api/shared/security"
)

// AuthUsecase defines the interface for session lifecycle use cases.
type AuthUsecase interface {
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	SocialAuth(ctx context.Context, params SocialAuthParams) (*AuthResult, error)
	Authorize(ctx context.Context, accessToken string) (*model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID string) error
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// SocialAuthParams defines the parameters for signing in with a Google account.
type SocialAuthParams struct {
	Name    string
	Email   string
	Avatar  string
	IDToken string
}

// AuthResult is the outcome of a successful sign-in or refresh.
type AuthResult struct {
	User   *model.User
	Tokens *types.Tokens
}

// IDTokenVerifier checks an ID token issued by an external identity provider.
type IDTokenVerifier interface {
	ValidateIDToken(ctx context.Context, idToken string) (*provider.GoogleIdentity, error)
}

type authUsecase struct {
	identityRepo repository.IdentityRepository
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	jwtAuth      auth.JWTAuthenticator
	google       IDTokenVerifier
	tokenCfg     config.TokenConfig
	now          func() time.Time
}

func NewAuthUsecase(
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	google IDTokenVerifier,
	tokenCfg config.TokenConfig,
) AuthUsecase {
	return &authUsecase{
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		userRepo:     userRepo,
		jwtAuth:      jwtAuth,
		google:       google,
		tokenCfg:     tokenCfg,
		now:          time.Now,
	}
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := u.userRepo.GetUserCredentials(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	// Accounts created through social sign-in have no password.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}
	user.PasswordHash = ""

	if err := u.identityRepo.UpdateLastLogin(ctx, user.ID.Hex(), model.ProviderEmail); err != nil {
		return nil, err
	}

	return u.startSession(ctx, user)
}

func (u *authUsecase) SocialAuth(ctx context.Context, params SocialAuthParams) (*AuthResult, error) {
	email := normalizeEmail(params.Email)

	googleIdentity, err := u.google.ValidateIDToken(ctx, params.IDToken)
	if err != nil {
		return nil, wrap(ErrSocialTokenInvalid, err)
	}
	if normalizeEmail(googleIdentity.Email) != email {
		return nil, ErrSocialTokenInvalid
	}

	identity, err := u.identityRepo.GetIdentityByProvider(ctx, googleIdentity.UserID, model.ProviderGoogle)
	switch {
	case err == nil:
		user, err := u.userRepo.GetUser(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if err := u.identityRepo.UpdateLastLogin(ctx, identity.UserID, model.ProviderGoogle); err != nil {
			return nil, err
		}
		return u.startSession(ctx, user)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user, err := u.findOrCreateSocialUser(ctx, email, params)
	if err != nil {
		return nil, err
	}

	if _, err := u.identityRepo.CreateIdentity(ctx, &model.Identity{
		UserID:     user.ID.Hex(),
		Provider:   model.ProviderGoogle,
		ProviderID: googleIdentity.UserID,
		Email:      email,
	}); err != nil {
		return nil, err
	}

	return u.startSession(ctx, user)
}

func (u *authUsecase) findOrCreateSocialUser(
	ctx context.Context,
	email string,
	params SocialAuthParams,
) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	newUser := &model.User{
		Name:     strings.TrimSpace(params.Name),
		Email:    email,
		Verified: true,
	}
	if params.Avatar != "" {
		newUser.Avatar = &media.Asset{URL: params.Avatar}
	}

	user, err = u.userRepo.CreateUser(ctx, newUser)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Authorize(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, ErrLoginRequired
	}

	var claims types.JWTClaims
	if _, err := u.jwtAuth.ValidateTokenWithClaims(accessToken, u.tokenCfg.AccessTokenSecret, &claims); err != nil {
		return nil, wrap(ErrAccessTokenInvalid, err)
	}

	return u.lookupSession(ctx, claims.UserID)
}

// Refresh issues a new token pair for a live session. The session record
// itself is neither rewritten nor extended.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenInvalid
	}

	var claims types.JWTClaims
	if _, err := u.jwtAuth.ValidateTokenWithClaims(refreshToken, u.tokenCfg.RefreshTokenSecret, &claims); err != nil {
		return nil, wrap(ErrRefreshTokenInvalid, err)
	}

	user, err := u.lookupSession(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	tokens, err := u.issueTokens(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	return u.sessionRepo.DeleteSession(ctx, userID)
}

func (u *authUsecase) lookupSession(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrAccessTokenInvalid
	}

	user, err := u.sessionRepo.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) startSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	tokens, err := u.issueTokens(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	if err := u.sessionRepo.SaveSession(ctx, user, u.tokenCfg.SessionTTL); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *authUsecase) issueTokens(userID string) (*types.Tokens, error) {
	now := u.now()

	accessToken, err := u.jwtAuth.GenerateToken(types.JWTClaims{
		UserID:           userID,
		RegisteredClaims: u.jwtAuth.RegisteredClaims(userID, now, u.tokenCfg.AccessTokenExpiresIn),
	}, u.tokenCfg.AccessTokenSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.jwtAuth.GenerateToken(types.JWTClaims{
		UserID:           userID,
		RegisteredClaims: u.jwtAuth.RegisteredClaims(userID, now, u.tokenCfg.RefreshTokenExpiresIn),
	}, u.tokenCfg.RefreshTokenSecret)
	if err != nil {
		return nil, err
	}

	return &types.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
