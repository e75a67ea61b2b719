package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	tokensDomain "github.com/allisson/orgvault/internal/tokens/domain"
)

// MySQLTokenRepository implements SecretToken persistence for MySQL. UUIDs are
// stored as BINARY(16) and list fields as JSON.
type MySQLTokenRepository struct {
	db *sql.DB
}

func (m *MySQLTokenRepository) Create(ctx context.Context, token *tokensDomain.SecretToken) error {
	querier := database.GetTx(ctx, m.db)

	lists, err := marshalTokenLists(token)
	if err != nil {
		return err
	}

	query := `INSERT INTO secret_tokens (` + tokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		binaryUUID(token.ID),
		binaryUUID(token.OrganizationID),
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

func (m *MySQLTokenRepository) GetByID(ctx context.Context, tokenID uuid.UUID) (*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens WHERE id = ?`

	token, err := scanMySQLToken(querier.QueryRowContext(ctx, query, binaryUUID(tokenID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokensDomain.ErrTokenNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get token")
	}
	return token, nil
}

func (m *MySQLTokenRepository) ListByLookupPrefix(
	ctx context.Context,
	lookupPrefix string,
) ([]*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens WHERE lookup_prefix = ? ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, lookupPrefix)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list tokens by lookup prefix")
	}
	return collectTokens(rows, scanMySQLToken)
}

func (m *MySQLTokenRepository) ListLiveByLookupPrefix(
	ctx context.Context,
	lookupPrefix string,
	now time.Time,
) ([]*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens
			  WHERE lookup_prefix = ? AND is_revoked = FALSE AND expires_at > ?
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, lookupPrefix, now)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list live tokens by lookup prefix")
	}
	return collectTokens(rows, scanMySQLToken)
}

func (m *MySQLTokenRepository) ListByOrganization(
	ctx context.Context,
	organizationID uuid.UUID,
) ([]*tokensDomain.SecretToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM secret_tokens WHERE organization_id = ? ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, binaryUUID(organizationID))
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list tokens")
	}
	return collectTokens(rows, scanMySQLToken)
}

// IncrementUsage always changes last_used, so the affected row count is
// reliable under MySQL's changed-rows semantics.
func (m *MySQLTokenRepository) IncrementUsage(
	ctx context.Context,
	tokenID uuid.UUID,
	usedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_tokens
			  SET usage_count = usage_count + 1, last_used = ?
			  WHERE id = ? AND is_revoked = FALSE AND expires_at > ?
			  AND (max_usages IS NULL OR usage_count < max_usages)`

	result, err := querier.ExecContext(ctx, query, usedAt, binaryUUID(tokenID), usedAt)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to increment token usage")
	}
	return rowsAffected(result)
}

func (m *MySQLTokenRepository) Revoke(
	ctx context.Context,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_tokens SET is_revoked = TRUE, revoked_at = ?, revoked_by = ?
			  WHERE id = ? AND is_revoked = FALSE`

	if _, err := querier.ExecContext(ctx, query, revokedAt, revokedBy, binaryUUID(tokenID)); err != nil {
		return apperrors.Unavailable(err, "failed to revoke token")
	}
	return nil
}

func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secret_tokens WHERE expires_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to delete expired tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to get rows affected")
	}
	return count, nil
}

func (m *MySQLTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM secret_tokens WHERE expires_at < ?`, olderThan).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Unavailable(err, "failed to count expired tokens")
	}
	return count, nil
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

func scanMySQLToken(row rowScanner) (*tokensDomain.SecretToken, error) {
	var target tokenScanTarget
	var id, organizationID []byte
	if err := row.Scan(target.dest(&id, &organizationID)...); err != nil {
		return nil, err
	}

	if err := target.token.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	if err := target.token.OrganizationID.UnmarshalBinary(organizationID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal organization id")
	}
	return target.finish()
}

func binaryUUID(id uuid.UUID) []byte {
	b := make([]byte, len(id))
	copy(b, id[:])
	return b
}
