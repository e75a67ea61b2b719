// Package domain defines the audit trail models for secret access.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccessType classifies an audited operation as reading or writing secret data.
type AccessType string

const (
	AccessTypeRead  AccessType = "read"
	AccessTypeWrite AccessType = "write"
)

// AccessMethod names the operation that produced an audit entry.
type AccessMethod string

const (
	AccessMethodCreate        AccessMethod = "create"
	AccessMethodRead          AccessMethod = "read"
	AccessMethodRotate        AccessMethod = "rotate"
	AccessMethodDelete        AccessMethod = "delete"
	AccessMethodDeactivate    AccessMethod = "deactivate"
	AccessMethodTokenIssue    AccessMethod = "token_issue"
	AccessMethodTokenValidate AccessMethod = "token_validate"
	AccessMethodTokenRevoke   AccessMethod = "token_revoke"
)

// RequestContext carries caller metadata recorded with every audit entry.
type RequestContext struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// SecretAccess is one append-only audit entry. Exactly one is written per
// operation attempt, successful or not.
type SecretAccess struct {
	ID uuid.UUID
	// SecretID is nil for events not tied to a single secret, such as a token
	// validation that matched nothing.
	SecretID     *uuid.UUID
	UserID       string
	AccessType   AccessType
	AccessMethod AccessMethod
	Success      bool
	ErrorMessage string
	IPAddress    string
	UserAgent    string
	RequestID    string
	Metadata     map[string]any
	CreatedAt    time.Time
}

// NewSecretAccess builds an entry with the request metadata filled in.
func NewSecretAccess(
	secretID *uuid.UUID,
	userID string,
	accessType AccessType,
	method AccessMethod,
	reqCtx RequestContext,
) *SecretAccess {
	return &SecretAccess{
		SecretID:     secretID,
		UserID:       userID,
		AccessType:   accessType,
		AccessMethod: method,
		IPAddress:    reqCtx.IPAddress,
		UserAgent:    reqCtx.UserAgent,
		RequestID:    reqCtx.RequestID,
	}
}

// Succeeded marks the entry successful.
func (s *SecretAccess) Succeeded() *SecretAccess {
	s.Success = true
	s.ErrorMessage = ""
	return s
}

// Failed marks the entry failed with a message safe to store.
func (s *SecretAccess) Failed(message string) *SecretAccess {
	s.Success = false
	s.ErrorMessage = message
	return s
}

// WithMetadata adds one metadata key.
func (s *SecretAccess) WithMetadata(key string, value any) *SecretAccess {
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata[key] = value
	return s
}
