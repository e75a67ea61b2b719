// Package http provides HTTP handlers and middleware for service access tokens.
package http

import (
	"context"

	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

type tokenKey struct{}

// WithToken stores a validated token in the context.
func WithToken(ctx context.Context, token *tokensDomain.SecretToken) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// GetToken retrieves the token stored by TokenAuthenticationMiddleware.
func GetToken(ctx context.Context) (*tokensDomain.SecretToken, bool) {
	token, ok := ctx.Value(tokenKey{}).(*tokensDomain.SecretToken)
	return token, ok
}
