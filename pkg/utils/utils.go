package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashSecret returns the lowercase hex SHA-256 digest of a password or PIN.
// No salt is applied: equal secrets yield equal digests, which keeps
// digests compatible with snapshots written by earlier versions.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// CheckSecretHash reports whether secret hashes to digest.
func CheckSecretHash(secret, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(HashSecret(secret)), []byte(digest)) == 1
}
