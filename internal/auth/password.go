package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer passwords would be
// silently truncated by the hash, so callers reject them up front.
const MaxPasswordBytes = 72

// HashPassword derives a salted bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
