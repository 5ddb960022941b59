package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/tendant/chi-demo/middleware"
)

// AuthConfig selects how API callers authenticate. An API key hash takes
// precedence over a JWT secret; with neither the routes are open.
type AuthConfig struct {
	APIKeySHA256 string
	JWTSecret    string
}

// AuthMiddleware returns the authentication middleware for cfg
func AuthMiddleware(cfg AuthConfig) (func(http.Handler) http.Handler, error) {
	switch {
	case cfg.APIKeySHA256 != "":
		mw, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
			APIKeys: map[string]string{
				"default": cfg.APIKeySHA256,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API key middleware: %w", err)
		}
		return mw, nil

	case cfg.JWTSecret != "":
		tokenAuth := NewTokenAuth(cfg.JWTSecret)
		verifier := jwtauth.Verifier(tokenAuth)
		return func(next http.Handler) http.Handler {
			return verifier(jwtauth.Authenticator(next))
		}, nil

	default:
		return func(next http.Handler) http.Handler { return next }, nil
	}
}

// NewTokenAuth creates the HS256 token authority used to verify bearer tokens
func NewTokenAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}
