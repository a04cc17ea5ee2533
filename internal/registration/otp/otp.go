// Package otp issues and verifies the one-time codes proving email
// ownership. Only a salted hash and expiry are ever stored; the plaintext
// code exists solely for out-of-band delivery.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// TTL bounds a code's validity, measured from issuance.
const TTL = 10 * time.Minute

// Digits is the code length. Codes are zero-padded, so "012345" is valid.
const Digits = 6

var codeSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(Digits), nil)

// Generate returns a cryptographically random zero-padded numeric code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", Digits, n), nil
}

// NewSalt returns a random per-registration salt.
func NewSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate otp salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash produces the stored digest for a code under the given salt.
func Hash(code, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + code))
	return hex.EncodeToString(sum[:])
}

// Verify compares a candidate code against the stored digest in constant
// time with respect to the digest contents.
func Verify(storedHash, salt, code string) bool {
	candidate := Hash(code, salt)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidate)) == 1
}
