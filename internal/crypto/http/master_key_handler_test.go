package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	"github.com/allisson/orgvault/internal/crypto/usecase/mocks"
	"github.com/allisson/orgvault/internal/httputil"
)

func setupRouter(t *testing.T) (*gin.Engine, *mocks.MockMasterKeyUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := &mocks.MockMasterKeyUseCase{}
	handler := NewMasterKeyHandler(useCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.POST("/v1/admin/master-keys", handler.AddHandler)

	t.Cleanup(func() { useCase.AssertExpectations(t) })
	return router, useCase
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/master-keys", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httputil.ActorHeader, "ops")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func encodedKeyBody(t *testing.T, raw []byte) string {
	t.Helper()
	body, err := json.Marshal(AddMasterKeyRequest{MasterKey: base64.StdEncoding.EncodeToString(raw)})
	require.NoError(t, err)
	return string(body)
}

func TestMasterKeyHandler_AddHandler(t *testing.T) {
	raw := bytes.Repeat([]byte{7}, cryptoDomain.MinMasterKeySize)

	t.Run("Success", func(t *testing.T) {
		router, useCase := setupRouter(t)
		useCase.On("AddMasterKey", mock.Anything, raw, "ops").Return("a1b2c3d4e5f60718", nil)

		w := post(router, encodedKeyBody(t, raw))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp AddMasterKeyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "a1b2c3d4e5f60718", resp.KeyID)
		assert.NotContains(t, w.Body.String(), "master_key")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := post(router, "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingKey", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := post(router, `{"master_key":""}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("InvalidBase64", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := post(router, `{"master_key":"not base64!"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("TooShort", func(t *testing.T) {
		router, useCase := setupRouter(t)

		w := post(router, encodedKeyBody(t, []byte("short")))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "at least 32 bytes")
		useCase.AssertNotCalled(t, "AddMasterKey", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("KeyringFull", func(t *testing.T) {
		router, useCase := setupRouter(t)
		useCase.On("AddMasterKey", mock.Anything, raw, "ops").Return("", cryptoDomain.ErrKeyringFull)

		w := post(router, encodedKeyBody(t, raw))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
