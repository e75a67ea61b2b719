package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/orgvault/internal/crypto/domain"
	apperrors "github.com/allisson/orgvault/internal/errors"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"NotFound", apperrors.Wrap(apperrors.ErrNotFound, "secret not found"), http.StatusNotFound, "not_found"},
		{"Inactive", apperrors.Wrap(apperrors.ErrInactive, "secret is inactive"), http.StatusGone, "inactive"},
		{"Conflict", apperrors.Wrap(apperrors.ErrConflict, "secret already exists"), http.StatusConflict, "conflict"},
		{
			"InvalidInput",
			apperrors.Wrap(apperrors.ErrInvalidInput, "key: cannot be blank"),
			http.StatusUnprocessableEntity,
			"invalid_input",
		},
		{"Unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"Forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{
			"Unavailable",
			apperrors.Unavailable(errors.New("dial tcp: connection refused"), "failed to get secret"),
			http.StatusServiceUnavailable,
			"unavailable",
		},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedCode, body.Error)
		})
	}

	t.Run("DoesNotLeakStoreDetails", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleErrorGin(c, apperrors.Unavailable(errors.New("pq: password authentication failed"), "x"), nil)
		assert.NotContains(t, w.Body.String(), "pq:")
	})

	t.Run("DecryptionFailureIsInternal", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleErrorGin(c, cryptoDomain.ErrDecryptionFailed, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal_error","message":"An internal error occurred"}`, w.Body.String())
	})

	t.Run("InvalidInputKeepsMessage", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		HandleErrorGin(c, apperrors.Wrap(apperrors.ErrInvalidInput, "value: cannot be blank"), nil)

		assert.JSONEq(t,
			`{"error":"invalid_input","message":"value: cannot be blank: invalid input"}`,
			w.Body.String(),
		)
	})
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("value: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"value: cannot be blank"}`, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"unexpected EOF"}`, w.Body.String())
}

func TestRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("User-Agent", "deploy-bot/1.0")
	c.Request.RemoteAddr = "10.1.2.3:4567"

	assert.Equal(t, "anonymous", ActorID(c))
	c.Request.Header.Set(ActorHeader, " alice ")
	assert.Equal(t, "alice", ActorID(c))

	reqCtx := RequestContext(c)
	assert.Equal(t, "10.1.2.3", reqCtx.IPAddress)
	assert.Equal(t, "deploy-bot/1.0", reqCtx.UserAgent)
}
