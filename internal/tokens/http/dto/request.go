// Package dto provides data transfer objects for the access token endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

// GenerateTokenRequest contains the parameters for issuing a token. The
// organization is taken from the URL.
type GenerateTokenRequest struct {
	ServiceID      string   `json:"service_id"`
	ScopedSecrets  []string `json:"scoped_secrets"`
	ExpiryHours    int      `json:"expiry_hours"`
	MaxUsages      *int     `json:"max_usages"`
	IPRestrictions []string `json:"ip_restrictions"`
}

// Validate checks the request shape. The expiry is clamped, not rejected.
func (r *GenerateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ServiceID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ScopedSecrets, validation.Required),
		validation.Field(&r.IPRestrictions, validation.Each(customValidation.IPOrCIDR)),
	)
}

// ToInput builds the use case input.
func (r *GenerateTokenRequest) ToInput(organizationID uuid.UUID) *tokensDomain.GenerateTokenInput {
	return &tokensDomain.GenerateTokenInput{
		OrganizationID: organizationID,
		ServiceID:      r.ServiceID,
		ScopedSecrets:  r.ScopedSecrets,
		ExpiryHours:    r.ExpiryHours,
		MaxUsages:      r.MaxUsages,
		IPRestrictions: r.IPRestrictions,
	}
}

// ValidateTokenRequest carries a token presented for introspection.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the validate request is valid.
func (r *ValidateTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
	)
}
