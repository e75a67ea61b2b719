package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// MySQLSecretRepository implements Secret persistence for MySQL databases.
// UUIDs are stored as BINARY(16).
type MySQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new secret. A duplicate (organization, key) pair returns
// ErrSecretAlreadyExists.
func (m *MySQLSecretRepository) Create(ctx context.Context, secret *secretsDomain.Secret) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secrets (` + secretColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryUUID(secret.ID),
		binaryUUID(secret.OrganizationID),
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
func (m *MySQLSecretRepository) Update(ctx context.Context, secret *secretsDomain.Secret, expectedVersion uint) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secrets
			  SET name = ?, description = ?, category = ?, environment = ?, encrypted_value = ?,
			  key_hash = ?, master_key_id = ?, key_version = ?, is_active = ?, rotation_enabled = ?,
			  rotation_interval_days = ?, next_rotation_at = ?, updated_by = ?, updated_at = ?,
			  last_rotated_at = ?
			  WHERE id = ? AND key_version = ?`

	id := binaryUUID(secret.ID)
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
		id,
		expectedVersion,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update secret")
	}

	return checkVersionedUpdate(result, func() (uint, error) {
		var stored uint
		err := querier.QueryRowContext(ctx, `SELECT key_version FROM secrets WHERE id = ?`, id).Scan(&stored)
		return stored, err
	}, expectedVersion)
}

// UpdateSchedule moves next_rotation_at for one secret.
func (m *MySQLSecretRepository) UpdateSchedule(
	ctx context.Context,
	secretID uuid.UUID,
	nextRotationAt *time.Time,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secrets SET next_rotation_at = ?, updated_at = ? WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, nextRotationAt, updatedAt, binaryUUID(secretID)); err != nil {
		return apperrors.Unavailable(err, "failed to update secret rotation schedule")
	}
	return nil
}

// Delete removes the secret row. Rotation records cascade; audit entries stay.
func (m *MySQLSecretRepository) Delete(ctx context.Context, secretID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM secrets WHERE id = ?`, binaryUUID(secretID))
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to delete secret")
	}
	return rowsAffected(result)
}

// GetByID retrieves a secret including its envelope.
func (m *MySQLSecretRepository) GetByID(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + secretColumns + ` FROM secrets WHERE id = ?`

	secret, err := scanMySQLSecret(querier.QueryRowContext(ctx, query, binaryUUID(secretID)))
	if err != nil {
		return nil, mapGetError(err, "failed to get secret by id")
	}
	return secret, nil
}

// GetByIDForUpdate retrieves a secret and holds a row lock until the
// transaction in ctx ends.
func (m *MySQLSecretRepository) GetByIDForUpdate(ctx context.Context, secretID uuid.UUID) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + secretColumns + ` FROM secrets WHERE id = ? FOR UPDATE`

	secret, err := scanMySQLSecret(querier.QueryRowContext(ctx, query, binaryUUID(secretID)))
	if err != nil {
		return nil, mapGetError(err, "failed to lock secret")
	}
	return secret, nil
}

// GetByKey retrieves a secret by organization and key.
func (m *MySQLSecretRepository) GetByKey(
	ctx context.Context,
	organizationID uuid.UUID,
	key string,
) (*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + secretColumns + ` FROM secrets WHERE organization_id = ? AND secret_key = ?`

	secret, err := scanMySQLSecret(querier.QueryRowContext(ctx, query, binaryUUID(organizationID), key))
	if err != nil {
		return nil, mapGetError(err, "failed to get secret by key")
	}
	return secret, nil
}

// List returns secret metadata ordered by key.
func (m *MySQLSecretRepository) List(
	ctx context.Context,
	organizationID uuid.UUID,
	filter *secretsDomain.ListSecretsFilter,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	conditions, args := listConditions(binaryUUID(organizationID), filter, func(int) string { return "?" })
	args = append(args, filter.Limit, filter.Offset)

	query := `SELECT ` + secretMetadataColumns + ` FROM secrets WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY secret_key ASC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secrets")
	}
	return collectSecrets(rows, scanMySQLSecret)
}

// ListDueForRotation returns active secrets whose scheduled rotation is due.
func (m *MySQLSecretRepository) ListDueForRotation(
	ctx context.Context,
	now time.Time,
) ([]*secretsDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + secretMetadataColumns + ` FROM secrets
			  WHERE is_active = TRUE AND rotation_enabled = TRUE AND next_rotation_at <= ?
			  ORDER BY next_rotation_at ASC`

	rows, err := querier.QueryContext(ctx, query, now)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secrets due for rotation")
	}
	return collectSecrets(rows, scanMySQLSecret)
}

// NewMySQLSecretRepository creates a new MySQL Secret repository instance.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}

func scanMySQLSecret(row rowScanner) (*secretsDomain.Secret, error) {
	var secret secretsDomain.Secret
	var id, organizationID []byte
	var description, category, environment sql.NullString

	err := row.Scan(
		&id,
		&organizationID,
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

	if err := secret.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
	}
	if err := secret.OrganizationID.UnmarshalBinary(organizationID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal organization id")
	}
	secret.Description = description.String
	secret.Category = category.String
	secret.Environment = environment.String
	return &secret, nil
}

// binaryUUID returns the 16 raw bytes of id for BINARY(16) columns.
func binaryUUID(id uuid.UUID) []byte {
	b := make([]byte, len(id))
	copy(b, id[:])
	return b
}
