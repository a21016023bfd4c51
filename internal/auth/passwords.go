package auth

import (
	"log"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost of the hashes provisioned at the factory.
const bcryptCost = 10

// HashPassword produces a salted bcrypt hash of the password. Two calls on
// the same input yield different hashes; both verify.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against a bcrypt hash.
// A malformed hash is logged and reported as a mismatch, never an error;
// bad credentials are an expected outcome, not an exceptional one.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		log.Printf("auth: could not verify hash: %v", err)
	}
	return false
}
