package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data. Stored blueprints are
// deduplicated by it and file entries are laid out by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "prefix:<Hash(s)>", keeping keys a fixed length no
// matter what s contains.
func hashKey(prefix, s string) string {
	return prefix + ":" + Hash([]byte(s))
}
