package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultPageLimit applies when a list request carries no limit.
	DefaultPageLimit = 50
	// MaxPageLimit is the largest page a list endpoint returns.
	MaxPageLimit = 1000
)

// ParsePagination reads offset and limit from the query string.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	if raw, ok := c.GetQuery("offset"); ok {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
	}

	if limit, err = ParseLimit(c, DefaultPageLimit); err != nil {
		return 0, 0, err
	}
	return offset, limit, nil
}

// ParseLimit reads the limit query parameter, falling back to defaultLimit.
func ParseLimit(c *gin.Context, defaultLimit int) (int, error) {
	raw, ok := c.GetQuery("limit")
	if !ok || raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
	}
	return limit, nil
}
