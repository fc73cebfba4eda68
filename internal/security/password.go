// Package security hashes and checks user passwords.
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = fmt.Errorf("password longer than %d bytes", MaxPasswordBytes)

// Cost is the bcrypt work factor used by HashPassword. Tests lower it.
var Cost = bcrypt.DefaultCost

func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// PasswordMatches reports whether plain hashes to hash. A mismatch is (false, nil);
// an unreadable stored hash is an error. Input longer than MaxPasswordBytes never
// matches, since bcrypt would compare only its prefix.
func PasswordMatches(hash, plain string) (bool, error) {
	if len(plain) > MaxPasswordBytes {
		return false, nil
	}
	switch err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
