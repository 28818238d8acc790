package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 12

// Hash derives a salted bcrypt hash from the plaintext password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
