package httputil

import (
	"fmt"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
)

// ActorHeader names the caller identity set by the upstream gateway.
const ActorHeader = "X-Actor-ID"

// ActorID returns the caller identity, or "anonymous" when the header is absent.
func ActorID(c *gin.Context) string {
	if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" {
		return actor
	}
	return "anonymous"
}

// RequestContext collects the request attributes recorded with audit entries.
func RequestContext(c *gin.Context) auditDomain.RequestContext {
	return auditDomain.RequestContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: requestid.Get(c),
	}
}

// ParseUUIDParam reads a UUID path parameter.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s parameter: must be a valid UUID", name)
	}
	return id, nil
}
