package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	auditUsecase "github.com/allisson/orgvault/internal/audit/usecase"
	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	"github.com/allisson/orgvault/internal/httputil"
	secretsDTO "github.com/allisson/orgvault/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/orgvault/internal/secrets/usecase"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
	"github.com/allisson/orgvault/internal/tokens/http/dto"
	tokensUseCase "github.com/allisson/orgvault/internal/tokens/usecase"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

// TokenHandler handles HTTP requests for access token management and
// token-authenticated secret reads.
type TokenHandler struct {
	tokenUseCase  tokensUseCase.TokenUseCase
	secretUseCase secretsUseCase.SecretUseCase
	auditTrail    auditUsecase.AuditTrail
	logger        *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase tokensUseCase.TokenUseCase,
	secretUseCase secretsUseCase.SecretUseCase,
	auditTrail auditUsecase.AuditTrail,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase:  tokenUseCase,
		secretUseCase: secretUseCase,
		auditTrail:    auditTrail,
		logger:        logger,
	}
}

// GenerateHandler issues a token for an organization.
// POST /v1/organizations/:orgId/tokens - Returns 201; the plaintext is shown only here.
func (h *TokenHandler) GenerateHandler(c *gin.Context) {
	organizationID, err := httputil.ParseUUIDParam(c, "orgId")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.GenerateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Generate(
		c.Request.Context(), req.ToInput(organizationID), httputil.ActorID(c), httputil.RequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGenerateOutputToResponse(output))
}

// ListHandler lists token metadata of an organization.
// GET /v1/organizations/:orgId/tokens
func (h *TokenHandler) ListHandler(c *gin.Context) {
	organizationID, err := httputil.ParseUUIDParam(c, "orgId")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	tokens, err := h.tokenUseCase.List(c.Request.Context(), organizationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokensToListResponse(tokens))
}

// RevokeHandler revokes a token. Revoking an already revoked token succeeds.
// DELETE /v1/tokens/:id
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	tokenID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	revoked, err := h.tokenUseCase.Revoke(
		c.Request.Context(), tokenID, httputil.ActorID(c), httputil.RequestContext(c),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevokeTokenResponse{Revoked: revoked})
}

// ValidateHandler introspects a token and consumes one use.
// POST /v1/tokens/validate
func (h *TokenHandler) ValidateHandler(c *gin.Context) {
	var req dto.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, err := h.tokenUseCase.Validate(c.Request.Context(), req.Token, httputil.RequestContext(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ValidateTokenResponse{Valid: true, Token: dto.MapTokenToResponse(token)})
}

// ServiceSecretHandler returns a secret value to a token-authenticated service.
// GET /v1/service/secrets/:key - Requires TokenAuthenticationMiddleware.
func (h *TokenHandler) ServiceSecretHandler(c *gin.Context) {
	token, ok := GetToken(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tokensDomain.ErrInvalidAccessToken, h.logger)
		return
	}

	key := c.Param("key")
	reqCtx := httputil.RequestContext(c)

	if !token.AllowsSecret(key) {
		entry := auditDomain.NewSecretAccess(
			nil, token.ActorID(), auditDomain.AccessTypeRead, auditDomain.AccessMethodRead, reqCtx,
		).WithMetadata("key", key).WithMetadata("token_id", token.ID.String())
		h.auditTrail.LogAccess(c.Request.Context(), entry.Failed(tokensDomain.ErrTokenScopeDenied.Error()))

		httputil.HandleErrorGin(c, tokensDomain.ErrTokenScopeDenied, h.logger)
		return
	}

	plaintext, err := h.secretUseCase.GetValueByKey(
		c.Request.Context(), token.OrganizationID, key, token.ActorID(), reqCtx,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(plaintext)

	c.JSON(http.StatusOK, secretsDTO.MapValueToResponse(plaintext))
}

