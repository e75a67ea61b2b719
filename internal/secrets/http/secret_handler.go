// Package http provides HTTP handlers for the organization secret catalog.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditUsecase "github.com/allisson/orgvault/internal/audit/usecase"
	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	"github.com/allisson/orgvault/internal/httputil"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
	"github.com/allisson/orgvault/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/orgvault/internal/secrets/usecase"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

// SecretHandler handles HTTP requests for secret management operations.
type SecretHandler struct {
	secretUseCase secretsUseCase.SecretUseCase
	auditTrail    auditUsecase.AuditTrail
	logger        *slog.Logger
}

// NewSecretHandler creates a new secret handler with required dependencies.
func NewSecretHandler(
	secretUseCase secretsUseCase.SecretUseCase,
	auditTrail auditUsecase.AuditTrail,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		secretUseCase: secretUseCase,
		auditTrail:    auditTrail,
		logger:        logger,
	}
}

// CreateHandler creates a secret in an organization.
// POST /v1/organizations/:orgId/secrets - Returns 201 with metadata only.
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	organizationID, err := httputil.ParseUUIDParam(c, "orgId")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput(organizationID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}
	defer cryptoDomain.Zero(input.Value)

	secret, err := h.secretUseCase.Create(
		c.Request.Context(), input, httputil.ActorID(c), httputil.RequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSecretToResponse(secret))
}

// ListHandler lists secret metadata of an organization.
// GET /v1/organizations/:orgId/secrets?category=&environment=&include_inactive=&offset=&limit=
func (h *SecretHandler) ListHandler(c *gin.Context) {
	organizationID, err := httputil.ParseUUIDParam(c, "orgId")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	includeInactive := false
	if raw := c.Query("include_inactive"); raw != "" {
		if includeInactive, err = strconv.ParseBool(raw); err != nil {
			httputil.HandleValidationErrorGin(
				c, fmt.Errorf("invalid include_inactive parameter: must be a boolean"), h.logger,
			)
			return
		}
	}

	secrets, err := h.secretUseCase.List(c.Request.Context(), organizationID, &secretsDomain.ListSecretsFilter{
		Category:        c.Query("category"),
		Environment:     c.Query("environment"),
		IncludeInactive: includeInactive,
		Offset:          offset,
		Limit:           limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecretsToListResponse(secrets))
}

// GetValueHandler decrypts a secret by id.
// GET /v1/secrets/:id/value
func (h *SecretHandler) GetValueHandler(c *gin.Context) {
	secretID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	plaintext, err := h.secretUseCase.GetValue(
		c.Request.Context(), secretID, httputil.ActorID(c), httputil.RequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	c.JSON(http.StatusOK, dto.MapValueToResponse(plaintext))
}

// GetValueByKeyHandler decrypts a secret addressed by organization and key.
// GET /v1/organizations/:orgId/secrets/by-key/:key/value
func (h *SecretHandler) GetValueByKeyHandler(c *gin.Context) {
	organizationID, err := httputil.ParseUUIDParam(c, "orgId")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	plaintext, err := h.secretUseCase.GetValueByKey(
		c.Request.Context(), organizationID, c.Param("key"), httputil.ActorID(c), httputil.RequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	c.JSON(http.StatusOK, dto.MapValueToResponse(plaintext))
}

// UpdateValueHandler rotates a secret to a new value.
// PUT /v1/secrets/:id/value
func (h *SecretHandler) UpdateValueHandler(c *gin.Context) {
	secretID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateSecretValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	value, err := req.DecodeValue()
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid base64 value: %w", err), h.logger)
		return
	}
	defer cryptoDomain.Zero(value)

	result, err := h.secretUseCase.Update(
		c.Request.Context(), secretID, value, httputil.ActorID(c), httputil.RequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationResultToResponse(result))
}

// DeactivateHandler disables reads and rotations of a secret.
// POST /v1/secrets/:id/deactivate - Returns 204.
func (h *SecretHandler) DeactivateHandler(c *gin.Context) {
	secretID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	err = h.secretUseCase.Deactivate(c.Request.Context(), secretID, httputil.ActorID(c), httputil.RequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DeleteHandler removes a secret.
// DELETE /v1/secrets/:id - Returns 204.
func (h *SecretHandler) DeleteHandler(c *gin.Context) {
	secretID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	_, err = h.secretUseCase.Delete(c.Request.Context(), secretID, httputil.ActorID(c), httputil.RequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListRotationsHandler returns the rotation history of a secret.
// GET /v1/secrets/:id/rotations?limit=
func (h *SecretHandler) ListRotationsHandler(c *gin.Context) {
	secretID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	limit, err := httputil.ParseLimit(c, 50)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	rotations, err := h.secretUseCase.ListRotations(c.Request.Context(), secretID, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRotationsToListResponse(rotations))
}

// AuditTrailHandler returns the access history of a secret, newest first.
// GET /v1/secrets/:id/audit?limit=
func (h *SecretHandler) AuditTrailHandler(c *gin.Context) {
	secretID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	limit, err := httputil.ParseLimit(c, 100)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditTrail.GetAuditTrail(c.Request.Context(), secretID, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessesToListResponse(entries))
}
