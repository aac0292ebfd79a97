// Package auth holds the two shared-secret write gates.
package auth

import (
	"crypto/subtle"

	errors "github.com/Laisky/errors/v2"
)

// Request headers carrying the secrets.
const (
	HeaderUploadKey = "X-Upload-Key"
	HeaderDeleteKey = "X-Delete-Key"
)

// Keys are the process-wide write secrets, injected from configuration
// at startup and never compiled into client-deliverable code. The two
// secrets are independent and never interchangeable.
type Keys struct {
	upload []byte
	delete []byte
}

// NewKeys creates the gate from configured secrets.
func NewKeys(uploadKey, deleteKey string) (Keys, error) {
	if uploadKey == "" || deleteKey == "" {
		return Keys{}, errors.New("upload and delete keys must be configured")
	}

	return Keys{
		upload: []byte(uploadKey),
		delete: []byte(deleteKey),
	}, nil
}

// ValidUpload reports whether the provided key unlocks create/update
// operations.
func (k Keys) ValidUpload(provided string) bool {
	return subtle.ConstantTimeCompare(k.upload, []byte(provided)) == 1
}

// ValidDelete reports whether the provided key unlocks delete
// operations.
func (k Keys) ValidDelete(provided string) bool {
	return subtle.ConstantTimeCompare(k.delete, []byte(provided)) == 1
}
