// Package repository implements persistence of secrets and rotation records for
// PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

const (
	secretColumns = `id, organization_id, secret_key, name, description, category, environment,
			  encrypted_value, key_hash, master_key_id, key_version, is_active, rotation_enabled,
			  rotation_interval_days, next_rotation_at, created_by, updated_by, created_at, updated_at,
			  last_rotated_at`

	// secretMetadataColumns leaves the envelope out of listings.
	secretMetadataColumns = `id, organization_id, secret_key, name, description, category, environment,
			  '' AS encrypted_value, key_hash, master_key_id, key_version, is_active, rotation_enabled,
			  rotation_interval_days, next_rotation_at, created_by, updated_by, created_at, updated_at,
			  last_rotated_at`
)

// PostgreSQLSecretRepository implements Secret persistence for PostgreSQL databases.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new secret. A duplicate (organization, key) pair returns
// ErrSecretAlreadyExists.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secrets (` + secretColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.OrganizationID,
		secret.Key,
		secret.Name,
		nullString(secret.Description),
		nullString(secret.Category),
		nullString(secret.Environment),
		secret.EncryptedValue,
		secret.KeyHash,
		secret.MasterKeyID,
		secret.KeyVersion,
		secret.IsActive,
		secret.RotationEnabled,
		secret.RotationIntervalDays,
		secret.NextRotationAt,
		secret.CreatedBy,
		secret.UpdatedBy,
		secret.CreatedAt,
		secret.UpdatedAt,
		secret.LastRotatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return secretsDomain.ErrSecretAlreadyExists
		}
		return apperrors.Unavailable(err, "failed to create secret")
	}
	return nil
}

// Update writes the mutable fields guarded by the stored key version.
func (p *PostgreSQLSecretRepository) Update(
	ctx context.Context,
	secret *secretsDomain.Secret,
	expectedVersion uint,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secrets
			  SET name = $1, description = $2, category = $3, environment = $4, encrypted_value = $5,
			  key_hash = $6, master_key_id = $7, key_version = $8, is_active = $9, rotation_enabled = $10,
			  rotation_interval_days = $11, next_rotation_at = $12, updated_by = $13, updated_at = $14,
			  last_rotated_at = $15
			  WHERE id = $16 AND key_version = $17`

	result, err := querier.ExecContext(
		ctx,
		query,
		secret.Name,
		nullString(secret.Description),
		nullString(secret.Category),
		nullString(secret.Environment),
		secret.EncryptedValue,
		secret.KeyHash,
		secret.MasterKeyID,
		secret.KeyVersion,
		secret.IsActive,
		secret.RotationEnabled,
		secret.RotationIntervalDays,
		secret.NextRotationAt,
		secret.UpdatedBy,
		secret.UpdatedAt,
		secret.LastRotatedAt,
		secret.ID,
		expectedVersion,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update secret")
	}

	return checkVersionedUpdate(result, func() (uint, error) {
		var stored uint
		err := querier.QueryRowContext(ctx, `SELECT key_version FROM secrets WHERE id = $1`, secret.ID).
			Scan(&stored)
		return stored, err
	}, expectedVersion)
}

// UpdateSchedule moves next_rotation_at for one secret.
func (p *PostgreSQLSecretRepository) UpdateSchedule(
	ctx context.Context,
	secretID uuid.UUID,
	nextRotationAt *time.Time,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secrets SET next_rotation_at = $1, updated_at = $2 WHERE id = $3`

	if _, err := querier.ExecContext(ctx, query, nextRotationAt, updatedAt, secretID); err != nil {
		return apperrors.Unavailable(err, "failed to update secret rotation schedule")
	}
	return nil
}

// Delete removes the secret row. Rotation records cascade; audit entries stay.
func (p *PostgreSQLSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE id = $1`, secretID)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to delete secret")
	}
	return rowsAffected(result)
}

// GetByID retrieves a secret including its envelope.
func (p *PostgreSQLSecretRepository) GetByID(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + secretColumns + ` FROM secrets WHERE id = $1`

	secret, err := scanSecret(querier.QueryRowContext(ctx, query, secretID))
	if err != nil {
		return nil, mapGetError(err, "failed to get secret by id")
	}
	return secret, nil
}

// GetByIDForUpdate retrieves a secret and holds a row lock until the
// transaction in ctx ends.
func (p *PostgreSQLSecretRepository) GetByIDForUpdate(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + secretColumns + ` FROM secrets WHERE id = $1 FOR UPDATE`

	secret, err := scanSecret(querier.QueryRowContext(ctx, query, secretID))
	if err != nil {
		return nil, mapGetError(err, "failed to lock secret")
	}
	return secret, nil
}

// GetByKey retrieves a secret by organization and key.
func (p *PostgreSQLSecretRepository) GetByKey(
	ctx context.Context,
	organizationID uuid.UUID,
	key string,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + secretColumns + ` FROM secrets WHERE organization_id = $1 AND secret_key = $2`

	secret, err := scanSecret(querier.QueryRowContext(ctx, query, organizationID, key))
	if err != nil {
		return nil, mapGetError(err, "failed to get secret by key")
	}
	return secret, nil
}

// List returns secret metadata ordered by key.
func (p *PostgreSQLSecretRepository) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	conditions, args := listConditions(organizationID, filter, func(n int) string {
		return fmt.Sprintf("$%d", n)
	})
	args = append(args, filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s FROM secrets WHERE %s ORDER BY secret_key ASC LIMIT $%d OFFSET $%d`,
		secretMetadataColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secrets")
	}
	return collectSecrets(rows, scanSecret)
}

// ListDueForRotation returns active secrets whose scheduled rotation is due.
func (p *PostgreSQLSecretRepository) ListDueForRotation(
	ctx context.Context,
	now time.Time,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + secretMetadataColumns + ` FROM secrets
			  WHERE is_active = TRUE AND rotation_enabled = TRUE AND next_rotation_at <= $1
			  ORDER BY next_rotation_at ASC`

	rows, err := querier.QueryContext(ctx, query, now)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secrets due for rotation")
	}
	return collectSecrets(rows, scanSecret)
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL Secret repository instance.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSecret(row rowScanner) (*secretsDomain.Secret, error) {
	var secret secretsDomain.Secret
	var description, category, environment sql.NullString

	err := row.Scan(
		&secret.ID,
		&secret.OrganizationID,
		&secret.Key,
		&secret.Name,
		&description,
		&category,
		&environment,
		&secret.EncryptedValue,
		&secret.KeyHash,
		&secret.MasterKeyID,
		&secret.KeyVersion,
		&secret.IsActive,
		&secret.RotationEnabled,
		&secret.RotationIntervalDays,
		&secret.NextRotationAt,
		&secret.CreatedBy,
		&secret.UpdatedBy,
		&secret.CreatedAt,
		&secret.UpdatedAt,
		&secret.LastRotatedAt,
	)
	if err != nil {
		return nil, err
	}

	secret.Description = description.String
	secret.Category = category.String
	secret.Environment = environment.String
	return &secret, nil
}

func collectSecrets(
	rows *sql.Rows,
	scan func(rowScanner) (*secretsDomain.Secret, error),
) ([]*secretsDomain.Secret, error) {
	defer func() {
		_ = rows.Close()
	}()

	secrets := make([]*secretsDomain.Secret, 0)
	for rows.Next() {
		secret, err := scan(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret")
		}
		secrets = append(secrets, secret)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate secrets")
	}
	return secrets, nil
}

// listConditions builds the WHERE clause of an organization listing. placeholder
// renders the n-th bind parameter for the target dialect.
func listConditions(
	organizationID any,
	filter *secretsDomain.ListSecretsFilter,
	placeholder func(n int) string,
) ([]string, []any) {
	args := []any{organizationID}
	conditions := []string{"organization_id = " + placeholder(1)}

	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, "category = "+placeholder(len(args)))
	}
	if filter.Environment != "" {
		args = append(args, filter.Environment)
		conditions = append(conditions, "environment = "+placeholder(len(args)))
	}
	return conditions, args
}

// checkVersionedUpdate resolves a guarded update that matched no rows: a missing
// row is ErrSecretNotFound, a moved version is ErrConcurrentRotation. MySQL
// reports unchanged rows as unaffected, so an equal version is success.
func checkVersionedUpdate(result sql.Result, storedVersion func() (uint, error), expectedVersion uint) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable(err, "failed to read affected rows")
	}
	if affected > 0 {
		return nil
	}

	version, err := storedVersion()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return secretsDomain.ErrSecretNotFound
		}
		return apperrors.Unavailable(err, "failed to read secret version")
	}
	if version != expectedVersion {
		return secretsDomain.ErrConcurrentRotation
	}
	return nil
}

func rowsAffected(result sql.Result) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to read affected rows")
	}
	return affected > 0, nil
}

func mapGetError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return secretsDomain.ErrSecretNotFound
	}
	return apperrors.Unavailable(err, message)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
