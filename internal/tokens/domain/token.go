// Package domain defines scoped service access tokens.
//
// A token is a short-lived credential that lets a service read a named subset
// of an organization's secrets. Only an Argon2id hash of the plaintext and a
// short non-secret lookup prefix are stored.
package domain

import (
	"net/netip"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenPrefix tags plaintext tokens so they are recognisable in logs and config.
	TokenPrefix = "st_"

	// LookupPrefixLength is the number of token characters after TokenPrefix that
	// are stored in clear to narrow the validation scan.
	LookupPrefixLength = 8

	MinExpiryHours     = 1
	MaxExpiryHours     = 168
	DefaultExpiryHours = 24

	// PermissionRead is the only permission a token grants today.
	PermissionRead = "read"
)

// SecretToken is a stored access token. The plaintext is never part of it.
type SecretToken struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ServiceID      string
	TokenHash      string
	LookupPrefix   string
	ScopedSecrets  []string
	ExpiresAt      time.Time
	// MaxUsages is nil for unlimited use.
	MaxUsages  *int
	UsageCount int
	// IPRestrictions lists IPs or CIDRs; empty allows any address.
	IPRestrictions []string
	Permissions    []string
	IsRevoked      bool
	RevokedAt      *time.Time
	RevokedBy      string
	LastUsed       *time.Time
	CreatedBy      string
	CreatedAt      time.Time
}

// IsExpired reports whether the token has passed its expiry at now.
func (t *SecretToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// UsageExhausted reports whether the usage cap has been reached.
func (t *SecretToken) UsageExhausted() bool {
	return t.MaxUsages != nil && t.UsageCount >= *t.MaxUsages
}

// AllowsSecret reports whether key is in the token scope.
func (t *SecretToken) AllowsSecret(key string) bool {
	return slices.Contains(t.ScopedSecrets, key)
}

// AllowsIP reports whether ip satisfies the token's IP allow-list. An
// unparsable address is denied when restrictions exist.
func (t *SecretToken) AllowsIP(ip string) bool {
	if len(t.IPRestrictions) == 0 {
		return true
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, restriction := range t.IPRestrictions {
		if allowed, err := netip.ParseAddr(restriction); err == nil {
			if allowed.Unmap() == addr {
				return true
			}
			continue
		}
		if prefix, err := netip.ParsePrefix(restriction); err == nil && prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClampExpiryHours bounds a requested lifetime to [MinExpiryHours, MaxExpiryHours].
// Zero selects DefaultExpiryHours.
func ClampExpiryHours(hours int) int {
	switch {
	case hours == 0:
		return DefaultExpiryHours
	case hours < MinExpiryHours:
		return MinExpiryHours
	case hours > MaxExpiryHours:
		return MaxExpiryHours
	default:
		return hours
	}
}

// GenerateTokenInput holds the parameters of a new token.
type GenerateTokenInput struct {
	OrganizationID uuid.UUID
	ServiceID      string
	ScopedSecrets  []string
	ExpiryHours    int
	MaxUsages      *int
	IPRestrictions []string
}

// GenerateTokenOutput is returned exactly once per token. PlainToken cannot be
// recovered afterwards.
type GenerateTokenOutput struct {
	PlainToken string
	Token      *SecretToken
}

// ActorID is the audit identity of requests authenticated by a token.
func (t *SecretToken) ActorID() string {
	return "token:" + t.ID.String()
}
