package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashIdentifier returns the hex SHA-256 of salt followed by value.
func HashIdentifier(salt, value string) string {
	hasher := sha256.New()
	hasher.Write([]byte(salt))
	hasher.Write([]byte(value))
	return hex.EncodeToString(hasher.Sum(nil))
}
