package token

import (
	"strings"

	"github.com/google/uuid"
)

const (
	mrnPrefix = "MRN"
	mrnLength = 4
)

// NewMRN generates a short medical record number such as "MRN3F0A".
// Uniqueness is enforced by the patients table; callers are expected to
// regenerate and retry on a unique-constraint conflict.
func NewMRN() string {
	return mrnPrefix + strings.ToUpper(uuid.New().String()[:mrnLength])
}

// NewOpaque returns an unguessable opaque token for one-shot use.
func NewOpaque() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}
