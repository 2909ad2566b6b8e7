package util

import "golang.org/x/crypto/bcrypt"

// Verification codes are stored hashed so a leaked code store does not allow
// logins. The codes are short-lived, so the default cost is enough.

// HashCode hashes a verification code for storage
func HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckCode compares a submitted code against a stored hash
func CheckCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
