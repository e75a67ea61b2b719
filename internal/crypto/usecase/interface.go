// Package usecase implements administrative operations on the process keyring.
package usecase

import (
	"context"
)

// MasterKeyUseCase manages master keys held by the running process.
type MasterKeyUseCase interface {
	// AddMasterKey adds raw key material to the keyring and makes it the current
	// key for new encryptions. Older keys stay available for decryption.
	// Returns the id of the new key.
	AddMasterKey(ctx context.Context, raw []byte, rotatedBy string) (string, error)
}
