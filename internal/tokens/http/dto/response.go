package dto

import (
	"time"

	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

// TokenResponse is token metadata. Neither the plaintext nor the hash is included.
type TokenResponse struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ServiceID      string     `json:"service_id"`
	ScopedSecrets  []string   `json:"scoped_secrets"`
	Permissions    []string   `json:"permissions"`
	ExpiresAt      time.Time  `json:"expires_at"`
	MaxUsages      *int       `json:"max_usages,omitempty"`
	UsageCount     int        `json:"usage_count"`
	IPRestrictions []string   `json:"ip_restrictions,omitempty"`
	IsRevoked      bool       `json:"is_revoked"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	RevokedBy      string     `json:"revoked_by,omitempty"`
	LastUsed       *time.Time `json:"last_used,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MapTokenToResponse converts a domain token to its metadata response.
func MapTokenToResponse(token *tokensDomain.SecretToken) TokenResponse {
	return TokenResponse{
		ID:             token.ID.String(),
		OrganizationID: token.OrganizationID.String(),
		ServiceID:      token.ServiceID,
		ScopedSecrets:  token.ScopedSecrets,
		Permissions:    token.Permissions,
		ExpiresAt:      token.ExpiresAt,
		MaxUsages:      token.MaxUsages,
		UsageCount:     token.UsageCount,
		IPRestrictions: token.IPRestrictions,
		IsRevoked:      token.IsRevoked,
		RevokedAt:      token.RevokedAt,
		RevokedBy:      token.RevokedBy,
		LastUsed:       token.LastUsed,
		CreatedBy:      token.CreatedBy,
		CreatedAt:      token.CreatedAt,
	}
}

// GenerateTokenResponse is the only response that ever contains the plaintext.
type GenerateTokenResponse struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapGenerateOutputToResponse converts the issue output.
func MapGenerateOutputToResponse(output *tokensDomain.GenerateTokenOutput) GenerateTokenResponse {
	return GenerateTokenResponse{
		Token:     output.PlainToken,
		TokenID:   output.Token.ID.String(),
		ExpiresAt: output.Token.ExpiresAt,
	}
}

// ListTokensResponse represents an organization's tokens.
type ListTokensResponse struct {
	Data []TokenResponse `json:"data"`
}

// MapTokensToListResponse converts a slice of domain tokens to a list response.
func MapTokensToListResponse(tokens []*tokensDomain.SecretToken) ListTokensResponse {
	data := make([]TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		data = append(data, MapTokenToResponse(token))
	}
	return ListTokensResponse{Data: data}
}

// ValidateTokenResponse describes an accepted token.
type ValidateTokenResponse struct {
	Valid bool          `json:"valid"`
	Token TokenResponse `json:"token"`
}

// RevokeTokenResponse reports the outcome of a revocation.
type RevokeTokenResponse struct {
	Revoked bool `json:"revoked"`
}
