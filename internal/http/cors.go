package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const corsMaxAge = 12 * time.Hour

// corsAllowedHeaders are the request headers a browser client may send.
var corsAllowedHeaders = []string{"Authorization", "Content-Type", "X-Actor-ID", "X-Request-Id"}

// createCORSMiddleware returns nil when CORS is disabled or the origin list is
// empty after trimming.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("cors enabled without any origin, middleware not installed",
			slog.String("cors_allow_origins", allowOriginsStr))
		return nil
	}

	logger.Info("cors enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}

func parseOrigins(originsStr string) []string {
	var origins []string
	for _, field := range strings.FieldsFunc(originsStr, func(r rune) bool { return r == ',' }) {
		if origin := strings.TrimSpace(field); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
