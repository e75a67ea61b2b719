package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orgvault/internal/httputil"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
	tokensUseCase "github.com/allisson/orgvault/internal/tokens/usecase"
)

const bearerPrefix = "bearer "

// TokenAuthenticationMiddleware authenticates service requests carrying
// "Authorization: Bearer st_...". Each request consumes one token use. Every
// failure is answered with the same 401 body.
func TokenAuthenticationMiddleware(tokenUseCase tokensUseCase.TokenUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("token authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, tokensDomain.ErrInvalidAccessToken, logger)
			c.Abort()
			return
		}

		token, err := tokenUseCase.Validate(c.Request.Context(), plainToken, httputil.RequestContext(c))
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// bearerToken extracts the credential of a case-insensitive Bearer header.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
