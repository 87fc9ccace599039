// Package security provides id generation, editor tokens and password checks
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateNodeID returns a document-unique node id of the form prefix-ulid.
// ULIDs are monotonic within a process so ids are never reused.
func GenerateNodeID(prefix string) string {
	return prefix + "-" + strings.ToLower(ulid.Make().String())
}

// GenerateSecureKey creates a cryptographically secure random key and returns it as a hex string.
// Used for the JWT secret when none is configured.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
