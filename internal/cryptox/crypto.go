// Package cryptox implements the password-based envelope encryption used for
// vault files: PBKDF2 key derivation and AES-256-GCM authenticated
// encryption, serialized as a single base64 blob.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the random PBKDF2 salt embedded in every envelope.
	SaltSize = 16
	// NonceSize is the standard GCM nonce length.
	NonceSize = 12
	// TagSize is the GCM authentication tag length.
	TagSize = 16

	keySize       = 32
	kdfIterations = 100_000

	// headerSize is the fixed prefix of a decoded envelope: salt, nonce, tag.
	headerSize = SaltSize + NonceSize + TagSize
)

// DeriveKey derives a 256-bit AES key from a password and salt using
// PBKDF2-HMAC-SHA-256 with 100,000 iterations. The function is deterministic:
// the same (password, salt) pair always yields the same key.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, kdfIterations, keySize, sha256.New)
}

// Encrypt encrypts plaintext under a key derived from password and returns a
// self-contained envelope.
//
// A fresh random 16-byte salt and 12-byte nonce are generated on every call.
// The decoded envelope layout is:
//
//	salt(16) ‖ nonce(12) ‖ tag(16) ‖ ciphertext
//
// and the whole blob is base64-encoded. Decrypting an envelope requires only
// the password; no auxiliary state is needed.
func Encrypt(plaintext, password []byte) (string, error) {
	salt := common.GenerateRandByteArray(SaltSize)
	nonce := common.GenerateRandByteArray(NonceSize)

	aesgcm, err := newGCM(DeriveKey(password, salt))
	if err != nil {
		return "", err
	}

	// Seal returns ciphertext with the tag appended; the envelope layout
	// carries the tag ahead of the ciphertext.
	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)
	ct := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	blob := make([]byte, 0, headerSize+len(ct))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt decodes an envelope produced by Encrypt and returns the plaintext.
//
// It returns common.ErrMalformedEnvelope if the blob is not valid base64 or
// is shorter than the fixed header, and common.ErrDecryption if the
// authentication tag does not verify — a wrong password and tampered data are
// indistinguishable here by design.
func Decrypt(envelope string, password []byte) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", common.ErrMalformedEnvelope)
	}
	if len(blob) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", common.ErrMalformedEnvelope, len(blob), headerSize)
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	tag := blob[SaltSize+NonceSize : headerSize]
	ct := blob[headerSize:]

	aesgcm, err := newGCM(DeriveKey(password, salt))
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ct)+TagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrDecryption
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aesgcm, nil
}
