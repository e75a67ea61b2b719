// Package repository implements persistence of the secret access audit trail for
// PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/orgvault/internal/audit/domain"
	"github.com/allisson/orgvault/internal/database"
	apperrors "github.com/allisson/orgvault/internal/errors"
)

// PostgreSQLSecretAccessRepository stores audit entries in secret_access_logs.
type PostgreSQLSecretAccessRepository struct {
	db *sql.DB
}

// Create appends one entry. Nil metadata is stored as NULL.
func (p *PostgreSQLSecretAccessRepository) Create(ctx context.Context, access *auditDomain.SecretAccess) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(access.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO secret_access_logs (id, secret_id, user_id, access_type, access_method, success,
			  error_message, ip_address, user_agent, request_id, metadata, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		access.ID,
		access.SecretID,
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
func (p *PostgreSQLSecretAccessRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
	limit int,
) ([]*auditDomain.SecretAccess, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, secret_id, user_id, access_type, access_method, success, error_message,
			  ip_address, user_agent, request_id, metadata, created_at
			  FROM secret_access_logs
			  WHERE secret_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, secretID, limit)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list secret access logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.SecretAccess, 0)
	for rows.Next() {
		var entry auditDomain.SecretAccess
		var entrySecretID uuid.NullUUID
		var accessType, accessMethod string
		var errorMessage, ipAddress, userAgent, requestID sql.NullString
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
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

		if entrySecretID.Valid {
			id := entrySecretID.UUID
			entry.SecretID = &id
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

// NewPostgreSQLSecretAccessRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLSecretAccessRepository(db *sql.DB) *PostgreSQLSecretAccessRepository {
	return &PostgreSQLSecretAccessRepository{db: db}
}

// marshalMetadata returns an untyped nil for absent metadata so drivers bind NULL.
func marshalMetadata(metadata map[string]any) (any, error) {
	if metadata == nil {
		return nil, nil
	}
	out, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal secret access metadata")
	}
	return out, nil
}

func unmarshalMetadata(raw []byte) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	var metadata map[string]any
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret access metadata")
	}
	return metadata, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
