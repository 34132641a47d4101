package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an operator password with bcrypt. The cost comes from
// BCRYPT_COST; values outside the range bcrypt accepts (a mistyped env var,
// an unset config) fall back to the library default rather than producing a
// weak or unusable hash.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored operator hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
