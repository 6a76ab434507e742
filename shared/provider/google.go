package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrGoogleEmailUnverified = errors.New("google account email is not verified")
)

// GoogleIdentity is the subset of a verified Google ID token used for sign-in.
type GoogleIdentity struct {
	UserID string
	Email  string
}

// GoogleOAuthProvider verifies Google ID tokens issued for a single client.
type GoogleOAuthProvider struct {
	clientID   string
	httpClient *http.Client
}

// NewGoogleOAuthProvider creates a provider that accepts tokens issued for clientID.
func NewGoogleOAuthProvider(clientID string) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateIDToken checks idToken with Google's tokeninfo endpoint and returns
// the identity it asserts.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(p.httpClient))
	if err != nil {
		return nil, err
	}

	tokenInfo, err := oauth2Service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	if !tokenInfo.VerifiedEmail {
		return nil, ErrGoogleEmailUnverified
	}

	return &GoogleIdentity{
		UserID: tokenInfo.UserId,
		Email:  tokenInfo.Email,
	}, nil
}
