package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// NewTriggerKey generates a random 64-character hex key and its bcrypt hash. The key is
// handed to the cron caller; only the hash goes into TRIGGER_KEY_HASH.
func NewTriggerKey() (key, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate trigger key: %w", err)
	}
	key = hex.EncodeToString(b)
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash trigger key: %w", err)
	}
	return key, string(h), nil
}
