package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const resetCodeDigits = 6

// MaxResetAttempts wrong guesses burn the pending code.
const MaxResetAttempts = 5

var (
	ErrResetCodeInvalid = errors.New("invalid reset code")
	ErrResetCodeExpired = errors.New("reset code expired")
)

// NewResetCode returns a zero-padded six digit code.
func NewResetCode() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}

func HashResetCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// VerifyResetCode checks code against the stored hash and expiry.
// A missing hash or expiry is always invalid.
func VerifyResetCode(storedHash string, expiresAt *time.Time, code string, now time.Time) error {
	if storedHash == "" || expiresAt == nil || len(code) != resetCodeDigits {
		return ErrResetCodeInvalid
	}
	got := HashResetCode(code)
	if subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) != 1 {
		return ErrResetCodeInvalid
	}
	if !now.Before(*expiresAt) {
		return ErrResetCodeExpired
	}
	return nil
}
