// Package keygen generates credentials for the stack's env file.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// passwordBytes is the entropy of a generated password; rendered as hex it
// yields a 16-character secret.
const passwordBytes = 8

// Password returns a random hex password suitable for database and cache
// credentials.
func Password() (string, error) {
	buf := make([]byte, passwordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MustPassword returns a random password, panicking when the system
// entropy source fails. Used during interactive setup where there is no
// sensible recovery.
func MustPassword() string {
	p, err := Password()
	if err != nil {
		panic(err)
	}
	return p
}
