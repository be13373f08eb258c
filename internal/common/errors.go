// Package common defines shared sentinel errors and small helpers used
// across the lockbox core and CLI layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("vault file not found")

	// Envelope-level errors. ErrDecryption covers both a wrong password and
	// corrupted or tampered ciphertext; AEAD makes the two indistinguishable.
	ErrDecryption        = errors.New("decryption failed")
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrCorruptData       = errors.New("corrupt vault data")

	// Session-level errors.
	ErrCancelled = errors.New("cancelled by user")
	ErrLocked    = errors.New("vault is locked")
)
