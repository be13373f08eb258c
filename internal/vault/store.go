package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/cryptox"
	"github.com/google/uuid"
)

// filePerm restricts the vault file to its owner. Best effort on platforms
// without POSIX permission bits.
const filePerm fs.FileMode = 0o600

// Store reads and writes the persisted vault file. The file holds exactly
// one base64 envelope; see internal/cryptox for the layout.
//
// Two processes writing the same path are not coordinated: the last Write
// wins and a concurrent update is silently clobbered. This is a documented
// limitation, not a guarantee violation.
type Store struct {
	path string
}

// NewStore returns a Store bound to the given vault file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the vault file path the store is bound to.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the vault file is present.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat vault file: %w", err)
}

// Init creates a new vault file encrypting an empty record and returns that
// record. The path must not already exist for a meaningful vault lifecycle,
// but Init itself does not check; it simply writes.
func (s *Store) Init(password []byte) (Record, error) {
	record := Record{}
	if err := s.Write(password, record); err != nil {
		return nil, fmt.Errorf("init vault: %w", err)
	}
	return record, nil
}

// Read loads the vault file, decrypts it with the given password and parses
// the plaintext into a Record.
//
// Errors: common.ErrorNotFound if the file does not exist,
// common.ErrDecryption / common.ErrMalformedEnvelope from the envelope layer,
// common.ErrCorruptData if decryption succeeds but the plaintext is not a
// flat string-to-string mapping.
func (s *Store) Read(password []byte) (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, s.path)
		}
		return nil, fmt.Errorf("read vault file: %w", err)
	}

	plaintext, err := cryptox.Decrypt(strings.TrimSpace(string(data)), password)
	if err != nil {
		return nil, err
	}

	return ParseRecord(plaintext)
}

// Write serializes record, encrypts it with the given password and replaces
// the vault file. The envelope is written to a temporary file in the same
// directory and atomically renamed over the target, so a crash mid-write
// never leaves a half-written vault behind.
func (s *Store) Write(password []byte, record Record) error {
	plaintext, err := record.Serialize()
	if err != nil {
		return err
	}

	envelope, err := cryptox.Encrypt(plaintext, password)
	if err != nil {
		return fmt.Errorf("encrypt vault: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))

	if err := os.WriteFile(tmp, []byte(envelope), filePerm); err != nil {
		return fmt.Errorf("write vault file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace vault file: %w", err)
	}
	return nil
}
