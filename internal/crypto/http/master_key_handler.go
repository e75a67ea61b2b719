// Package http provides the administrative HTTP handlers for the keyring.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/orgvault/internal/crypto/usecase"
	"github.com/allisson/orgvault/internal/httputil"
	customValidation "github.com/allisson/orgvault/internal/validation"
)

// AddMasterKeyRequest carries new master key material as standard base64.
type AddMasterKeyRequest struct {
	MasterKey string `json:"master_key"`
}

// Validate checks the request shape.
func (r *AddMasterKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MasterKey, validation.Required, customValidation.NotBlank,
			customValidation.Base64MinBytes(cryptoDomain.MinMasterKeySize)),
	)
}

// AddMasterKeyResponse reports the id of the key that is now current.
type AddMasterKeyResponse struct {
	KeyID string `json:"key_id"`
}

// MasterKeyHandler handles keyring administration requests.
type MasterKeyHandler struct {
	masterKeyUseCase cryptoUseCase.MasterKeyUseCase
	logger           *slog.Logger
}

// NewMasterKeyHandler creates a MasterKeyHandler.
func NewMasterKeyHandler(masterKeyUseCase cryptoUseCase.MasterKeyUseCase, logger *slog.Logger) *MasterKeyHandler {
	return &MasterKeyHandler{
		masterKeyUseCase: masterKeyUseCase,
		logger:           logger,
	}
}

// AddHandler adds a master key to the running process.
// POST /v1/admin/master-keys - Returns 201 with the new key id.
func (h *MasterKeyHandler) AddHandler(c *gin.Context) {
	var req AddMasterKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	raw, err := cryptoDomain.DecodeMasterKey(req.MasterKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	keyID, err := h.masterKeyUseCase.AddMasterKey(c.Request.Context(), raw, httputil.ActorID(c))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, AddMasterKeyResponse{KeyID: keyID})
}
