package domain

import (
	"github.com/allisson/orgvault/internal/errors"
)

// Token-specific error definitions.
var (
	// ErrInvalidAccessToken is the only error external callers see for a rejected token.
	ErrInvalidAccessToken = errors.Wrap(errors.ErrUnauthorized, "invalid access token")

	// ErrTokenNotFound indicates no token exists with the given id.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrTokenScopeDenied indicates a valid token does not cover the requested secret.
	ErrTokenScopeDenied = errors.Wrap(errors.ErrForbidden, "token does not grant access to this secret")
)

// RejectionReason is the internal reason a token failed validation. It is
// recorded in the audit trail and logs, never returned to the caller.
type RejectionReason string

const (
	ReasonMalformed     RejectionReason = "malformed"
	ReasonNotFound      RejectionReason = "not_found"
	ReasonExpired       RejectionReason = "expired"
	ReasonRevoked       RejectionReason = "revoked"
	ReasonUsageExceeded RejectionReason = "usage_exceeded"
	ReasonIPDenied      RejectionReason = "ip_denied"
)

// TokenRejectedError carries the internal rejection reason. It unwraps to
// ErrInvalidAccessToken, so errors.Is and HTTP mapping treat every reason alike.
type TokenRejectedError struct {
	Reason  RejectionReason
	TokenID string
}

func (e *TokenRejectedError) Error() string {
	return ErrInvalidAccessToken.Error()
}

func (e *TokenRejectedError) Unwrap() error {
	return ErrInvalidAccessToken
}

// Reject builds a TokenRejectedError for reason.
func Reject(reason RejectionReason, tokenID string) error {
	return &TokenRejectedError{Reason: reason, TokenID: tokenID}
}
