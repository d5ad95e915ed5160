package model

// Hasher hashes and verifies passwords. Implementations must never log or
// persist the plaintext.
type Hasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches the stored hash.
	Compare(hash, password string) error
}
