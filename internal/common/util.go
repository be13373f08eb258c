package common

import "crypto/rand"

// GenerateRandByteArray returns size cryptographically secure random bytes.
// It panics if the system RNG fails, which on supported platforms means the
// process environment is unusable for key material anyway.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passwords or cryptographic
// keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
