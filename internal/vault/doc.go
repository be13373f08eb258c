// Package vault implements the encrypted key-value secret store: the
// persisted vault file (Store), the decrypted in-memory content (Record),
// and the unlock/lock session state machine with its sliding relock timer
// (Session).
//
// A vault file is a single self-contained envelope produced by
// internal/cryptox; decrypting it requires only the password. A Session is
// intended to be owned by a single logical caller: item-level calls against
// the same Session must be serialized by that caller.
package vault
