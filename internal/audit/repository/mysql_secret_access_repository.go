package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
)

// MySQLSecretAccessRepository stores audit entries in secret_access_logs.
// UUIDs are stored as BINARY(16).
type MySQLSecretAccessRepository struct {
	db *sql.DB
}

// Create appends one entry.
func (m *MySQLSecretAccessRepository) Create(ctx context.Context, access *auditDomain.SecretAccess) error {
	querier := database.GetTx(ctx, m.db)

	id, err := access.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret access id")
	}

	var secretID []byte
	if access.SecretID != nil {
		if secretID, err = access.SecretID.MarshalBinary(); err != nil {
			return apperrors.Wrap(err, "failed to marshal secret id")
		}
	}

	metadataJSON, err := marshalMetadata(access.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO secret_access_logs (id, secret_id, user_id, access_type, access_method, success,
			  error_message, ip_address, user_agent, request_id, metadata, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		secretID,
		access.UserID,
		string(access.AccessType),
		string(access.AccessMethod),
		access.Success,
		nullString(access.ErrorMessage),
		nullString(access.IPAddress),
		nullString(access.UserAgent),
		nullString(access.RequestID),
		metadataJSON,
		access.CreatedAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create secret access log")
	}
	return nil
}

// ListBySecret returns entries for secretID, newest first.
func (m *MySQLSecretAccessRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*auditDomain.SecretAccess, error) {
	querier := database.GetTx(ctx, m.db)

	secretIDBinary, err := secretID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal secret id")
	}

	query := `SELECT id, secret_id, user_id, access_type, access_method, success, error_message,
			  ip_address, user_agent, request_id, metadata, created_at
			  FROM secret_access_logs
			  WHERE secret_id = ?
			  ORDER BY created_at DESC, id DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, secretIDBinary, limit)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secret access logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.SecretAccess, 0)
	for rows.Next() {
		var entry auditDomain.SecretAccess
		var id, entrySecretID []byte
		var accessType, accessMethod string
		var errorMessage, ipAddress, userAgent, requestID sql.NullString
		var metadataJSON []byte

		err := rows.Scan(
			&id,
			&entrySecretID,
			&entry.UserID,
			&accessType,
			&accessMethod,
			&entry.Success,
			&errorMessage,
			&ipAddress,
			&userAgent,
			&requestID,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret access log")
		}

		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal secret access id")
		}
		if entrySecretID != nil {
			var parsed uuid.UUID
			if err := parsed.UnmarshalBinary(entrySecretID); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
			}
			entry.SecretID = &parsed
		}
		entry.AccessType = auditDomain.AccessType(accessType)
		entry.AccessMethod = auditDomain.AccessMethod(accessMethod)
		entry.ErrorMessage = errorMessage.String
		entry.IPAddress = ipAddress.String
		entry.UserAgent = userAgent.String
		entry.RequestID = requestID.String
		if entry.Metadata, err = unmarshalMetadata(metadataJSON); err != nil {
			return nil, err
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate secret access logs")
	}

	return entries, nil
}

// NewMySQLSecretAccessRepository creates a new MySQL audit repository.
func NewMySQLSecretAccessRepository(db *sql.DB) *MySQLSecretAccessRepository {
	return &MySQLSecretAccessRepository{db: db}
}
