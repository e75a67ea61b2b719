// Package service generates service access tokens and verifies them against
// their stored Argon2id hashes.
package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/orgvault/internal/errors"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

// tokenEntropyBytes is the random part of every token (256 bits).
const tokenEntropyBytes = 32

// encodedTokenLength is the length of a token without its prefix.
var encodedTokenLength = base64.RawURLEncoding.EncodedLen(tokenEntropyBytes)

// TokenService defines operations for access token generation and verification.
type TokenService interface {
	// Generate creates a token. The plain token is shown to the caller once; the
	// hash and lookup prefix are what gets stored.
	Generate() (plainToken, tokenHash, lookupPrefix string, err error)

	// Verify performs a constant-time comparison of plainToken against tokenHash.
	Verify(plainToken, tokenHash string) bool

	// LookupPrefix extracts the stored lookup prefix from a presented token.
	// It returns false when the token is not well formed.
	LookupPrefix(plainToken string) (string, bool)
}

type tokenService struct {
	hasher *pwdhash.PasswordHasher
}

func (s *tokenService) Generate() (string, string, string, error) {
	randomBytes := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := tokensDomain.TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)

	tokenHash, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to hash token")
	}

	lookupPrefix, _ := s.LookupPrefix(plainToken)
	return plainToken, tokenHash, lookupPrefix, nil
}

func (s *tokenService) Verify(plainToken, tokenHash string) bool {
	ok, err := s.hasher.Verify([]byte(plainToken), tokenHash)
	if err != nil {
		return false
	}
	return ok
}

func (s *tokenService) LookupPrefix(plainToken string) (string, bool) {
	body, found := strings.CutPrefix(plainToken, tokensDomain.TokenPrefix)
	if !found || len(body) != encodedTokenLength {
		return "", false
	}
	if _, err := base64.RawURLEncoding.DecodeString(body); err != nil {
		return "", false
	}
	return body[:tokensDomain.LookupPrefixLength], true
}

// NewTokenService creates a TokenService hashing with Argon2id under the
// Moderate policy.
func NewTokenService() TokenService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		panic(err)
	}

	return &tokenService{
		hasher: hasher,
	}
}
