package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost used for passwords and security answers
var BcryptCost = 12

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a bcrypt hash with a candidate password
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// NormalizeSecurityAnswer lowercases an answer and removes all whitespace.
func NormalizeSecurityAnswer(answer string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, answer)
}

// HashSecurityAnswer hashes the normalized answer.
func HashSecurityAnswer(answer string) (string, error) {
	return HashPassword(NormalizeSecurityAnswer(answer))
}

// CheckSecurityAnswer compares a candidate against a stored answer. Stored
// values that are not bcrypt hashes are compared as normalized plaintext.
func CheckSecurityAnswer(stored, answer string) bool {
	normalized := NormalizeSecurityAnswer(answer)
	if normalized == "" || stored == "" {
		return false
	}
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return CheckPassword(stored, normalized)
	}
	return NormalizeSecurityAnswer(stored) == normalized
}
