package dto

import (
	"encoding/base64"
	"time"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// SecretResponse is secret metadata. The value is never part of it.
type SecretResponse struct {
	ID                   string     `json:"id"`
	OrganizationID       string     `json:"organization_id"`
	Key                  string     `json:"key"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	Category             string     `json:"category,omitempty"`
	Environment          string     `json:"environment,omitempty"`
	KeyVersion           uint       `json:"key_version"`
	IsActive             bool       `json:"is_active"`
	RotationEnabled      bool       `json:"rotation_enabled"`
	RotationIntervalDays int        `json:"rotation_interval_days,omitempty"`
	NextRotationAt       *time.Time `json:"next_rotation_at,omitempty"`
	LastRotatedAt        *time.Time `json:"last_rotated_at,omitempty"`
	CreatedBy            string     `json:"created_by"`
	UpdatedBy            string     `json:"updated_by"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// MapSecretToResponse converts a domain secret to its metadata response.
func MapSecretToResponse(secret *secretsDomain.Secret) SecretResponse {
	return SecretResponse{
		ID:                   secret.ID.String(),
		OrganizationID:       secret.OrganizationID.String(),
		Key:                  secret.Key,
		Name:                 secret.Name,
		Description:          secret.Description,
		Category:             secret.Category,
		Environment:          secret.Environment,
		KeyVersion:           secret.KeyVersion,
		IsActive:             secret.IsActive,
		RotationEnabled:      secret.RotationEnabled,
		RotationIntervalDays: secret.RotationIntervalDays,
		NextRotationAt:       secret.NextRotationAt,
		LastRotatedAt:        secret.LastRotatedAt,
		CreatedBy:            secret.CreatedBy,
		UpdatedBy:            secret.UpdatedBy,
		CreatedAt:            secret.CreatedAt,
		UpdatedAt:            secret.UpdatedAt,
	}
}

// ListSecretsResponse represents a page of secrets.
type ListSecretsResponse struct {
	Data []SecretResponse `json:"data"`
}

// MapSecretsToListResponse converts a slice of domain secrets to a list response.
func MapSecretsToListResponse(secrets []*secretsDomain.Secret) ListSecretsResponse {
	data := make([]SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		data = append(data, MapSecretToResponse(secret))
	}
	return ListSecretsResponse{Data: data}
}

// SecretValueResponse carries a decrypted value, base64 encoded.
// SECURITY: only ever sent over TLS.
type SecretValueResponse struct {
	Value string `json:"value"`
}

// MapValueToResponse encodes plaintext. The caller zeroes plaintext afterwards.
func MapValueToResponse(plaintext []byte) SecretValueResponse {
	return SecretValueResponse{Value: base64.StdEncoding.EncodeToString(plaintext)}
}

// RotationResultResponse is returned by a value update.
type RotationResultResponse struct {
	Secret     SecretResponse `json:"secret"`
	RotationID string         `json:"rotation_id"`
	OldVersion uint           `json:"old_version"`
	NewVersion uint           `json:"new_version"`
}

// MapRotationResultToResponse converts a rotation result.
func MapRotationResultToResponse(result *secretsDomain.RotationResult) RotationResultResponse {
	return RotationResultResponse{
		Secret:     MapSecretToResponse(result.Secret),
		RotationID: result.RotationID.String(),
		OldVersion: result.OldVersion,
		NewVersion: result.NewVersion,
	}
}

// RotationResponse is one rotation record.
type RotationResponse struct {
	ID           string     `json:"id"`
	SecretID     string     `json:"secret_id"`
	OldValueHash string     `json:"old_value_hash"`
	RotationType string     `json:"rotation_type"`
	RotatedBy    string     `json:"rotated_by"`
	Reason       string     `json:"reason,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ListRotationsResponse wraps rotation records.
type ListRotationsResponse struct {
	Data []RotationResponse `json:"data"`
}

// MapRotationsToListResponse converts rotation records.
func MapRotationsToListResponse(rotations []*secretsDomain.SecretRotation) ListRotationsResponse {
	data := make([]RotationResponse, 0, len(rotations))
	for _, rotation := range rotations {
		data = append(data, RotationResponse{
			ID:           rotation.ID.String(),
			SecretID:     rotation.SecretID.String(),
			OldValueHash: rotation.OldValueHash,
			RotationType: string(rotation.RotationType),
			RotatedBy:    rotation.RotatedBy,
			Reason:       rotation.Reason,
			Status:       string(rotation.Status),
			ErrorMessage: rotation.ErrorMessage,
			CreatedAt:    rotation.CreatedAt,
			CompletedAt:  rotation.CompletedAt,
		})
	}
	return ListRotationsResponse{Data: data}
}

// AccessResponse is one audit entry.
type AccessResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	AccessType   string         `json:"access_type"`
	AccessMethod string         `json:"access_method"`
	Success      bool           `json:"success"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListAccessResponse wraps an audit trail.
type ListAccessResponse struct {
	Data []AccessResponse `json:"data"`
}

// MapAccessesToListResponse converts audit entries.
func MapAccessesToListResponse(entries []*auditDomain.SecretAccess) ListAccessResponse {
	data := make([]AccessResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, AccessResponse{
			ID:           entry.ID.String(),
			UserID:       entry.UserID,
			AccessType:   string(entry.AccessType),
			AccessMethod: string(entry.AccessMethod),
			Success:      entry.Success,
			ErrorMessage: entry.ErrorMessage,
			IPAddress:    entry.IPAddress,
			UserAgent:    entry.UserAgent,
			RequestID:    entry.RequestID,
			Metadata:     entry.Metadata,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return ListAccessResponse{Data: data}
}
