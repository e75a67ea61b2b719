package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

const rotationColumns = `id, secret_id, old_value_hash, rotation_type, rotated_by, reason, status,
			  error_message, created_at, completed_at`

// PostgreSQLRotationRepository stores rotation records in secret_rotations.
type PostgreSQLRotationRepository struct {
	db *sql.DB
}

// Create inserts a rotation record.
func (p *PostgreSQLRotationRepository) Create(ctx context.Context, rotation *secretsDomain.SecretRotation) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_rotations (` + rotationColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		rotation.ID,
		rotation.SecretID,
		rotation.OldValueHash,
		string(rotation.RotationType),
		rotation.RotatedBy,
		nullString(rotation.Reason),
		string(rotation.Status),
		nullString(rotation.ErrorMessage),
		rotation.CreatedAt,
		rotation.CompletedAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create secret rotation")
	}
	return nil
}

// Update finalises a rotation record.
func (p *PostgreSQLRotationRepository) Update(ctx context.Context, rotation *secretsDomain.SecretRotation) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_rotations SET status = $1, error_message = $2, completed_at = $3 WHERE id = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(rotation.Status),
		nullString(rotation.ErrorMessage),
		rotation.CompletedAt,
		rotation.ID,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to update secret rotation")
	}

	updated, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if !updated {
		return secretsDomain.ErrRotationNotFound
	}
	return nil
}

// ListBySecret returns rotations for secretID, most recent first.
func (p *PostgreSQLRotationRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + rotationColumns + ` FROM secret_rotations
			  WHERE secret_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, secretID, limit)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secret rotations")
	}
	defer func() {
		_ = rows.Close()
	}()

	rotations := make([]*secretsDomain.SecretRotation, 0)
	for rows.Next() {
		var rotation secretsDomain.SecretRotation
		var rotationType, status string
		var reason, errorMessage sql.NullString

		err := rows.Scan(
			&rotation.ID,
			&rotation.SecretID,
			&rotation.OldValueHash,
			&rotationType,
			&rotation.RotatedBy,
			&reason,
			&status,
			&errorMessage,
			&rotation.CreatedAt,
			&rotation.CompletedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret rotation")
		}

		rotation.RotationType = secretsDomain.RotationType(rotationType)
		rotation.Status = secretsDomain.RotationStatus(status)
		rotation.Reason = reason.String
		rotation.ErrorMessage = errorMessage.String
		rotations = append(rotations, &rotation)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate secret rotations")
	}
	return rotations, nil
}

// NewPostgreSQLRotationRepository creates a new PostgreSQL rotation repository.
func NewPostgreSQLRotationRepository(db *sql.DB) *PostgreSQLRotationRepository {
	return &PostgreSQLRotationRepository{db: db}
}
