package models

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomBytes returns n random bytes hex-encoded. Used for the
// unique identifiers of incidents and other records.
func GenerateRandomBytes(n int) (string, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)

	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
