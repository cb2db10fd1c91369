package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for new password hashes
var BcryptCost = 12

// MinPasswordLength is the shortest password accepted for staff accounts
const MinPasswordLength = 8

// HashPassword hashes a plain-text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches the stored hash
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
