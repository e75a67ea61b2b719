// Package repository implements persistence of service access tokens for
// PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

const tokenColumns = `id, organization_id, service_id, token_hash, lookup_prefix, scoped_secrets, expires_at,
			  max_usages, usage_count, ip_restrictions, permissions, is_revoked, revoked_at, revoked_by,
			  last_used, created_by, created_at`

// PostgreSQLTokenRepository implements SecretToken persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new token. List fields are stored as JSONB.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokensDomain.SecretToken) error {
	querier := database.GetTx(ctx, p.db)

	lists, err := marshalTokenLists(token)
	if err != nil {
		return err
	}

	query := `INSERT INTO secret_tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.OrganizationID,
		token.ServiceID,
		token.TokenHash,
		token.LookupPrefix,
		lists.scopedSecrets,
		token.ExpiresAt,
		token.MaxUsages,
		token.UsageCount,
		lists.ipRestrictions,
		lists.permissions,
		token.IsRevoked,
		token.RevokedAt,
		nullString(token.RevokedBy),
		token.LastUsed,
		token.CreatedBy,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create token")
	}
	return nil
}

// GetByID retrieves a token. Returns ErrTokenNotFound if it doesn't exist.
func (p *PostgreSQLTokenRepository) GetByID(ctx context.Context, tokenID uuid.UUID) (*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens WHERE id = $1`

	token, err := scanToken(querier.QueryRowContext(ctx, query, tokenID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokensDomain.ErrTokenNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get token")
	}
	return token, nil
}

// ListByLookupPrefix returns every token sharing the lookup prefix.
func (p *PostgreSQLTokenRepository) ListByLookupPrefix(
	ctx context.Context,
	lookupPrefix string,
) ([]*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens WHERE lookup_prefix = $1 ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, lookupPrefix)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list tokens by lookup prefix")
	}
	return collectTokens(rows, scanToken)
}

// ListLiveByLookupPrefix returns the unrevoked tokens sharing the lookup
// prefix that have not expired at now.
func (p *PostgreSQLTokenRepository) ListLiveByLookupPrefix(
	ctx context.Context,
	lookupPrefix string,
	now time.Time,
) ([]*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens
			  WHERE lookup_prefix = $1 AND is_revoked = FALSE AND expires_at > $2
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, lookupPrefix, now)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list live tokens by lookup prefix")
	}
	return collectTokens(rows, scanToken)
}

// ListByOrganization returns an organization's tokens, newest first.
func (p *PostgreSQLTokenRepository) ListByOrganization(
	ctx context.Context,
	organizationID uuid.UUID,
) ([]*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens WHERE organization_id = $1 ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list tokens")
	}
	return collectTokens(rows, scanToken)
}

// IncrementUsage records one use in a single conditional statement, so two
// concurrent validations can never both consume the last allowed use.
func (p *PostgreSQLTokenRepository) IncrementUsage(
	ctx context.Context,
	tokenID uuid.UUID,
	usedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_tokens
			  SET usage_count = usage_count + 1, last_used = $1
			  WHERE id = $2 AND is_revoked = FALSE AND expires_at > $1
			  AND (max_usages IS NULL OR usage_count < max_usages)`

	result, err := querier.ExecContext(ctx, query, usedAt, tokenID)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to increment token usage")
	}
	return rowsAffected(result)
}

// Revoke marks the token revoked unless it already is.
func (p *PostgreSQLTokenRepository) Revoke(
	ctx context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_tokens SET is_revoked = TRUE, revoked_at = $1, revoked_by = $2
			  WHERE id = $3 AND is_revoked = FALSE`

	if _, err := querier.ExecContext(ctx, query, revokedAt, revokedBy, tokenID); err != nil {
		return apperrors.Unavailable(err, "failed to revoke token")
	}
	return nil
}

// DeleteExpired removes tokens that expired before olderThan.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secret_tokens WHERE expires_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to get rows affected")
	}
	return count, nil
}

// CountExpired counts tokens that expired before olderThan.
func (p *PostgreSQLTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM secret_tokens WHERE expires_at < $1`, olderThan).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to count expired tokens")
	}
	return count, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// tokenLists holds the JSON encodings of a token's list fields.
type tokenLists struct {
	scopedSecrets  []byte
	ipRestrictions []byte
	permissions    []byte
}

func marshalTokenLists(token *tokensDomain.SecretToken) (*tokenLists, error) {
	var lists tokenLists
	var err error
	if lists.scopedSecrets, err = marshalList(token.ScopedSecrets); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal scoped secrets")
	}
	if lists.ipRestrictions, err = marshalList(token.IPRestrictions); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal ip restrictions")
	}
	if lists.permissions, err = marshalList(token.Permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal permissions")
	}
	return &lists, nil
}

// marshalList encodes a nil slice as [] so the column never holds null.
func marshalList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

// tokenScanTarget collects the driver-level values of one row before they are
// converted to a SecretToken.
type tokenScanTarget struct {
	token          tokensDomain.SecretToken
	maxUsages      sql.NullInt64
	scopedSecrets  []byte
	ipRestrictions []byte
	permissions    []byte
	revokedBy      sql.NullString
}

func (s *tokenScanTarget) dest(id, organizationID any) []any {
	return []any{
		id,
		organizationID,
		&s.token.ServiceID,
		&s.token.TokenHash,
		&s.token.LookupPrefix,
		&s.scopedSecrets,
		&s.token.ExpiresAt,
		&s.maxUsages,
		&s.token.UsageCount,
		&s.ipRestrictions,
		&s.permissions,
		&s.token.IsRevoked,
		&s.token.RevokedAt,
		&s.revokedBy,
		&s.token.LastUsed,
		&s.token.CreatedBy,
		&s.token.CreatedAt,
	}
}

func (s *tokenScanTarget) finish() (*tokensDomain.SecretToken, error) {
	var err error
	if s.token.ScopedSecrets, err = unmarshalList(s.scopedSecrets); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal scoped secrets")
	}
	if s.token.IPRestrictions, err = unmarshalList(s.ipRestrictions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal ip restrictions")
	}
	if s.token.Permissions, err = unmarshalList(s.permissions); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permissions")
	}
	if s.maxUsages.Valid {
		maxUsages := int(s.maxUsages.Int64)
		s.token.MaxUsages = &maxUsages
	}
	s.token.RevokedBy = s.revokedBy.String
	return &s.token, nil
}

func scanToken(row rowScanner) (*tokensDomain.SecretToken, error) {
	var target tokenScanTarget
	if err := row.Scan(target.dest(&target.token.ID, &target.token.OrganizationID)...); err != nil {
		return nil, err
	}
	return target.finish()
}

func collectTokens(
	rows *sql.Rows,
	scan func(rowScanner) (*tokensDomain.SecretToken, error),
) ([]*tokensDomain.SecretToken, error) {
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*tokensDomain.SecretToken, 0)
	for rows.Next() {
		token, err := scan(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate tokens")
	}
	return tokens, nil
}

func rowsAffected(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to read affected rows")
	}
	return affected > 0, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
