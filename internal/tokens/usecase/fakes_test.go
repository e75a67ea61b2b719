package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
	tokensService "github.com/allisson/orgvault/internal/tokens/service"
)

// memoryTokenRepository is an in-memory TokenRepository whose IncrementUsage
// applies the same conditions as the SQL statement under one lock.
type memoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]tokensDomain.SecretToken
}

func newMemoryTokenRepository() *memoryTokenRepository {
	return &memoryTokenRepository{tokens: make(map[uuid.UUID]tokensDomain.SecretToken)}
}

func (r *memoryTokenRepository) Create(_ context.Context, token *tokensDomain.SecretToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = *token
	return nil
}

func (r *memoryTokenRepository) GetByID(_ context.Context, tokenID uuid.UUID) (*tokensDomain.SecretToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenID]
	if !ok {
		return nil, tokensDomain.ErrTokenNotFound
	}
	return &token, nil
}

func (r *memoryTokenRepository) ListByLookupPrefix(
	_ context.Context,
	lookupPrefix string,
) ([]*tokensDomain.SecretToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*tokensDomain.SecretToken
	for _, token := range r.tokens {
		if token.LookupPrefix == lookupPrefix {
			found := token
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *memoryTokenRepository) ListLiveByLookupPrefix(
	_ context.Context,
	lookupPrefix string,
	now time.Time,
) ([]*tokensDomain.SecretToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*tokensDomain.SecretToken
	for _, token := range r.tokens {
		if token.LookupPrefix == lookupPrefix && !token.IsRevoked && !token.IsExpired(now) {
			found := token
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *memoryTokenRepository) ListByOrganization(
	_ context.Context,
	organizationID uuid.UUID,
) ([]*tokensDomain.SecretToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*tokensDomain.SecretToken
	for _, token := range r.tokens {
		if token.OrganizationID == organizationID {
			found := token
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memoryTokenRepository) IncrementUsage(_ context.Context, tokenID uuid.UUID, usedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenID]
	if !ok || token.IsRevoked || token.IsExpired(usedAt) || token.UsageExhausted() {
		return false, nil
	}
	token.UsageCount++
	token.LastUsed = &usedAt
	r.tokens[tokenID] = token
	return true, nil
}

func (r *memoryTokenRepository) Revoke(
	_ context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenID]
	if !ok {
		return tokensDomain.ErrTokenNotFound
	}
	if token.IsRevoked {
		return nil
	}
	token.IsRevoked = true
	token.RevokedBy = revokedBy
	token.RevokedAt = &revokedAt
	r.tokens[tokenID] = token
	return nil
}

func (r *memoryTokenRepository) DeleteExpired(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, token := range r.tokens {
		if token.ExpiresAt.Before(olderThan) {
			delete(r.tokens, id)
			count++
		}
	}
	return count, nil
}

func (r *memoryTokenRepository) CountExpired(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, token := range r.tokens {
		if token.ExpiresAt.Before(olderThan) {
			count++
		}
	}
	return count, nil
}

func (r *memoryTokenRepository) get(tokenID uuid.UUID) tokensDomain.SecretToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[tokenID]
}

// sha256TokenService produces tokens in the real format but hashes them with
// SHA-256 so tests do not pay for Argon2id.
type sha256TokenService struct {
	format tokensService.TokenService
}

func newSHA256TokenService() *sha256TokenService {
	return &sha256TokenService{format: tokensService.NewTokenService()}
}

func (s *sha256TokenService) Generate() (string, string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", "", err
	}
	plainToken := tokensDomain.TokenPrefix + base64.RawURLEncoding.EncodeToString(raw)
	lookupPrefix, _ := s.format.LookupPrefix(plainToken)
	return plainToken, s.hash(plainToken), lookupPrefix, nil
}

func (s *sha256TokenService) Verify(plainToken, tokenHash string) bool {
	return subtle.ConstantTimeCompare([]byte(s.hash(plainToken)), []byte(tokenHash)) == 1
}

func (s *sha256TokenService) LookupPrefix(plainToken string) (string, bool) {
	return s.format.LookupPrefix(plainToken)
}

func (s *sha256TokenService) hash(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}

// recordingAuditTrail keeps every logged entry.
type recordingAuditTrail struct {
	mu      sync.Mutex
	entries []auditDomain.SecretAccess
}

func (r *recordingAuditTrail) LogAccess(_ context.Context, access *auditDomain.SecretAccess) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *access)
}

func (r *recordingAuditTrail) GetAuditTrail(
	_ context.Context,
	_ uuid.UUID,
	_ int,
) ([]*auditDomain.SecretAccess, error) {
	return nil, nil
}

func (r *recordingAuditTrail) all() []auditDomain.SecretAccess {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auditDomain.SecretAccess(nil), r.entries...)
}

func (r *recordingAuditTrail) last() auditDomain.SecretAccess {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}
