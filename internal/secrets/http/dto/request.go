// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

// CreateSecretRequest contains the parameters for creating a secret. The
// organization is taken from the URL. Value is base64 encoded.
type CreateSecretRequest struct {
	Key                  string `json:"key"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	Environment          string `json:"environment"`
	Value                string `json:"value"`
	RotationEnabled      bool   `json:"rotation_enabled"`
	RotationIntervalDays int    `json:"rotation_interval_days"`
}

// Validate checks the request shape. Domain rules are enforced by the use case.
func (r *CreateSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Value, validation.Required, customValidation.Base64),
		validation.Field(&r.RotationIntervalDays, validation.Min(0)),
	)
}

// ToInput decodes the value and builds the use case input.
func (r *CreateSecretRequest) ToInput(organizationID uuid.UUID) (*secretsDomain.CreateSecretInput, error) {
	value, err := base64.StdEncoding.DecodeString(r.Value)
	if err != nil {
		return nil, err
	}
	return &secretsDomain.CreateSecretInput{
		OrganizationID:       organizationID,
		Key:                  r.Key,
		Name:                 r.Name,
		Description:          r.Description,
		Category:             r.Category,
		Environment:          r.Environment,
		Value:                value,
		RotationEnabled:      r.RotationEnabled,
		RotationIntervalDays: r.RotationIntervalDays,
	}, nil
}

// UpdateSecretValueRequest carries the new base64 value of a rotation.
type UpdateSecretValueRequest struct {
	Value string `json:"value"`
}

// Validate checks if the update request is valid.
func (r *UpdateSecretValueRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.Required, customValidation.Base64),
	)
}

// DecodeValue returns the raw value bytes.
func (r *UpdateSecretValueRequest) DecodeValue() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.Value)
}
