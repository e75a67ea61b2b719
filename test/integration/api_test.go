// Package integration runs the HTTP API end to end against PostgreSQL and MySQL.
// Tests are skipped when the databases are not reachable.
package integration

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/orgvault/internal/app"
	"github.com/allisson/orgvault/internal/config"
	cryptoHTTP "github.com/allisson/orgvault/internal/crypto/http"
	secretsDTO "github.com/allisson/orgvault/internal/secrets/http/dto"
	"github.com/allisson/orgvault/internal/testutil"
	tokensDTO "github.com/allisson/orgvault/internal/tokens/http/dto"
)

type integrationTestContext struct {
	container *app.Container
	server    *httptest.Server
}

type request struct {
	method string
	path   string
	body   any
	actor  string
	bearer string
}

func (ctx *integrationTestContext) do(t *testing.T, r request) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(r.method, ctx.server.URL+r.path, bodyReader)
	require.NoError(t, err)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.actor != "" {
		req.Header.Set("X-Actor-ID", r.actor)
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // test server on localhost
	resp, err := client.Do(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func randomKey(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func setupIntegrationTest(t *testing.T, driver string) *integrationTestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testutil.SkipIfNoDB(t, driver)
	db := testutil.SetupDB(t, driver)
	testutil.TeardownDB(t, db)

	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           8080,
		DBDriver:             driver,
		DBConnectionString:   testutil.GetTestDSN(driver),
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		LogLevel:             "error",
		MasterKey:            randomKey(t),
		KeyringMaxKeys:       4,
		RotationSchedule:     "@every 1h",
	}

	container := app.NewContainer(cfg)
	server, err := container.HTTPServer()
	require.NoError(t, err)

	ts := httptest.NewServer(server.GetHandler())
	t.Cleanup(func() {
		ts.Close()
		_ = container.Shutdown(t.Context())
	})

	return &integrationTestContext{container: container, server: ts}
}

func encode(value string) string {
	return base64.StdEncoding.EncodeToString([]byte(value))
}

func decodeValue(t *testing.T, body []byte) string {
	t.Helper()
	var response secretsDTO.SecretValueResponse
	require.NoError(t, json.Unmarshal(body, &response))
	raw, err := base64.StdEncoding.DecodeString(response.Value)
	require.NoError(t, err)
	return string(raw)
}

func TestIntegration(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver)
			orgID := uuid.Must(uuid.NewV7()).String()
			const admin = "admin@example.com"

			var secretID string

			t.Run("01_CreateSecret", func(t *testing.T) {
				resp, body := ctx.do(t, request{
					method: http.MethodPost,
					path:   "/v1/organizations/" + orgID + "/secrets",
					actor:  admin,
					body: map[string]any{
						"key":                    "DB_PASSWORD",
						"name":                   "Database password",
						"environment":            "production",
						"value":                  encode("s3cr3t-v1"),
						"rotation_enabled":       true,
						"rotation_interval_days": 30,
					},
				})
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				var secret secretsDTO.SecretResponse
				require.NoError(t, json.Unmarshal(body, &secret))
				assert.Equal(t, "DB_PASSWORD", secret.Key)
				assert.Equal(t, uint(1), secret.KeyVersion)
				assert.Equal(t, admin, secret.CreatedBy)
				assert.NotNil(t, secret.NextRotationAt)
				secretID = secret.ID
			})

			t.Run("02_DuplicateKeyConflicts", func(t *testing.T) {
				resp, _ := ctx.do(t, request{
					method: http.MethodPost,
					path:   "/v1/organizations/" + orgID + "/secrets",
					actor:  admin,
					body:   map[string]any{"key": "DB_PASSWORD", "name": "again", "value": encode("x")},
				})
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("03_ReadValue", func(t *testing.T) {
				resp, body := ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/value", actor: admin})
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
				assert.Equal(t, "s3cr3t-v1", decodeValue(t, body))

				resp, body = ctx.do(t, request{
					method: http.MethodGet,
					path:   "/v1/organizations/" + orgID + "/secrets/by-key/DB_PASSWORD/value",
					actor:  admin,
				})
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, "s3cr3t-v1", decodeValue(t, body))
			})

			t.Run("04_ListSecretsHidesValues", func(t *testing.T) {
				resp, body := ctx.do(t, request{method: http.MethodGet, path: "/v1/organizations/" + orgID + "/secrets"})
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.NotContains(t, string(body), "encrypted_value")

				var list secretsDTO.ListSecretsResponse
				require.NoError(t, json.Unmarshal(body, &list))
				require.Len(t, list.Data, 1)
				assert.Equal(t, secretID, list.Data[0].ID)
			})

			t.Run("05_AddMasterKeyKeepsOldValuesReadable", func(t *testing.T) {
				resp, body := ctx.do(t, request{
					method: http.MethodPost,
					path:   "/v1/admin/master-keys",
					actor:  admin,
					body:   cryptoHTTP.AddMasterKeyRequest{MasterKey: randomKey(t)},
				})
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				resp, body = ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/value", actor: admin})
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, "s3cr3t-v1", decodeValue(t, body))
			})

			t.Run("06_RotateValue", func(t *testing.T) {
				resp, body := ctx.do(t, request{
					method: http.MethodPut,
					path:   "/v1/secrets/" + secretID + "/value",
					actor:  admin,
					body:   map[string]string{"value": encode("s3cr3t-v2")},
				})
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var result secretsDTO.RotationResultResponse
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Equal(t, uint(1), result.OldVersion)
				assert.Equal(t, uint(2), result.NewVersion)

				resp, body = ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/value", actor: admin})
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, "s3cr3t-v2", decodeValue(t, body))

				resp, body = ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/rotations"})
				require.Equal(t, http.StatusOK, resp.StatusCode)
				var rotations secretsDTO.ListRotationsResponse
				require.NoError(t, json.Unmarshal(body, &rotations))
				require.Len(t, rotations.Data, 1)
				assert.Equal(t, "completed", rotations.Data[0].Status)
				assert.Equal(t, admin, rotations.Data[0].RotatedBy)
			})

			var tokenID, plainToken string

			t.Run("07_IssueToken", func(t *testing.T) {
				resp, body := ctx.do(t, request{
					method: http.MethodPost,
					path:   "/v1/organizations/" + orgID + "/tokens",
					actor:  admin,
					body: map[string]any{
						"service_id":     "billing-api",
						"scoped_secrets": []string{"DB_PASSWORD"},
						"expiry_hours":   1,
						"max_usages":     2,
					},
				})
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				var generated tokensDTO.GenerateTokenResponse
				require.NoError(t, json.Unmarshal(body, &generated))
				assert.Contains(t, generated.Token, "st_")
				tokenID, plainToken = generated.TokenID, generated.Token
			})

			t.Run("08_ServiceAccessHonoursScopeAndUsageCap", func(t *testing.T) {
				resp, body := ctx.do(t, request{method: http.MethodGet, path: "/v1/service/secrets/DB_PASSWORD", bearer: plainToken})
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
				assert.Equal(t, "s3cr3t-v2", decodeValue(t, body))

				resp, _ = ctx.do(t, request{method: http.MethodGet, path: "/v1/service/secrets/OTHER", bearer: plainToken})
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)

				resp, _ = ctx.do(t, request{method: http.MethodGet, path: "/v1/service/secrets/DB_PASSWORD", bearer: plainToken})
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("09_RevokeToken", func(t *testing.T) {
				resp, _ := ctx.do(t, request{method: http.MethodDelete, path: "/v1/tokens/" + tokenID, actor: admin})
				require.Equal(t, http.StatusOK, resp.StatusCode)

				resp, _ = ctx.do(t, request{method: http.MethodDelete, path: "/v1/tokens/" + tokenID, actor: admin})
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				resp, _ = ctx.do(t, request{method: http.MethodPost, path: "/v1/tokens/validate", body: map[string]string{"token": plainToken}})
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("10_AuditTrail", func(t *testing.T) {
				resp, body := ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/audit"})
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var trail secretsDTO.ListAccessResponse
				require.NoError(t, json.Unmarshal(body, &trail))
				assert.GreaterOrEqual(t, len(trail.Data), 6)
				for _, entry := range trail.Data {
					assert.NotEmpty(t, entry.AccessMethod)
				}
			})

			t.Run("11_DeactivateThenDelete", func(t *testing.T) {
				resp, _ := ctx.do(t, request{method: http.MethodPost, path: "/v1/secrets/" + secretID + "/deactivate", actor: admin})
				require.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/value", actor: admin})
				assert.Equal(t, http.StatusGone, resp.StatusCode)

				resp, _ = ctx.do(t, request{method: http.MethodDelete, path: "/v1/secrets/" + secretID, actor: admin})
				require.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.do(t, request{method: http.MethodGet, path: "/v1/secrets/" + secretID + "/value", actor: admin})
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			})
		})
	}
}
