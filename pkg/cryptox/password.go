package cryptox

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a salted bcrypt hash of the password. The cost is the
// library default; existing user rows were hashed the same way, so changing
// it only affects newly written hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a stored bcrypt hash.
// Returns a non-nil error on mismatch or on a malformed hash.
func VerifyPassword(password, encodedHash string) error {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
}
