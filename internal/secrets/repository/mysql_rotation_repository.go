package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
	secretsDomain "github.com/allisson/orgvault/internal/secrets/domain"
)

// MySQLRotationRepository stores rotation records in secret_rotations.
type MySQLRotationRepository struct {
	db *sql.DB
}

// Create inserts a rotation record.
func (m *MySQLRotationRepository) Create(ctx context.Context, rotation *secretsDomain.SecretRotation) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secret_rotations (` + rotationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryUUID(rotation.ID),
		binaryUUID(rotation.SecretID),
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

// Update finalises a rotation record. Status always changes from pending, so an
// unaffected row means the record does not exist.
func (m *MySQLRotationRepository) Update(ctx context.Context, rotation *secretsDomain.SecretRotation) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_rotations SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		string(rotation.Status),
		nullString(rotation.ErrorMessage),
		rotation.CompletedAt,
		binaryUUID(rotation.ID),
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
func (m *MySQLRotationRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*secretsDomain.SecretRotation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + rotationColumns + ` FROM secret_rotations
			  WHERE secret_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, binaryUUID(secretID), limit)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secret rotations")
	}
	defer func() {
		_ = rows.Close()
	}()

	rotations := make([]*secretsDomain.SecretRotation, 0)
	for rows.Next() {
		var rotation secretsDomain.SecretRotation
		var id, rotationSecretID []byte
		var rotationType, status string
		var reason, errorMessage sql.NullString

		err := rows.Scan(
			&id,
			&rotationSecretID,
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

		if err := rotation.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal rotation id")
		}
		if err := rotation.SecretID.UnmarshalBinary(rotationSecretID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
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

// NewMySQLRotationRepository creates a new MySQL rotation repository.
func NewMySQLRotationRepository(db *sql.DB) *MySQLRotationRepository {
	return &MySQLRotationRepository{db: db}
}
