package handler

import (
	"net/http"
	"time"

	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/config"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/internal/middleware"
	"github.com/vasapolrittideah/elearning-api/services/learning-service/pkg/types"
)

const RefreshTokenCookie = "refreshToken"

// CookieOptions defines how token cookies are issued.
type CookieOptions struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// NewCookieOptions derives cookie options from the service configuration.
// Cookie lifetimes match the token lifetimes.
func NewCookieOptions(cfg *config.LearningServiceConfig) CookieOptions {
	return CookieOptions{
		Secure:        cfg.IsProduction(),
		AccessMaxAge:  cfg.Token.AccessTokenExpiresIn,
		RefreshMaxAge: cfg.Token.RefreshTokenExpiresIn,
	}
}

func setTokenCookies(w http.ResponseWriter, tokens *types.Tokens, opts CookieOptions) {
	now := time.Now()
	http.SetCookie(w, tokenCookie(middleware.AccessTokenCookie, tokens.AccessToken, now, opts.AccessMaxAge, opts.Secure))
	http.SetCookie(w, tokenCookie(RefreshTokenCookie, tokens.RefreshToken, now, opts.RefreshMaxAge, opts.Secure))
}

func clearTokenCookies(w http.ResponseWriter, opts CookieOptions) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func tokenCookie(name, value string, now time.Time, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Expires:  now.Add(maxAge),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
