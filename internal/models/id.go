package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateID creates a row ID with the given prefix and a 5-char hex suffix,
// e.g. GenerateID("ph") -> "ph-4f2a1".
func GenerateID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("models: generate id: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b)[:5], nil
}
