package vault

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/logging"
)

// PasswordPrompter obtains a password from the user. Returning an empty
// slice signals deliberate cancellation.
type PasswordPrompter interface {
	PromptPassword(prompt string) ([]byte, error)
}

// Notifier is a best-effort informational surface. The session never depends
// on its side effects.
type Notifier interface {
	Notify(msg string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

// Session owns the unlock/lock state machine for one vault file. While
// unlocked it caches the password and the decrypted record in memory and
// keeps a single sliding relock timer armed; locking clears all of it.
//
// The mutex only guarantees that the relock timer and state transitions are
// mutually consistent (a timer firing mid-unlock can never observe an
// unlocked session without a cached password). Concurrent item-level calls
// against the same Session still race on the record and must be serialized
// by the owner.
type Session struct {
	store    *Store
	prompter PasswordPrompter
	notifier Notifier
	logger   logging.Logger
	relock   time.Duration

	mu       sync.Mutex
	unlocked bool
	password []byte
	record   Record
	timer    *time.Timer
	timerGen uint64
}

// NewSession constructs a session over the given store. relockTimeout is the
// idle duration after which the session locks itself; zero or negative
// disables automatic relocking. notifier and logger may be nil.
func NewSession(store *Store, prompter PasswordPrompter, relockTimeout time.Duration, notifier Notifier, logger logging.Logger) *Session {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	}
	return &Session{
		store:    store,
		prompter: prompter,
		notifier: notifier,
		logger:   logger,
		relock:   relockTimeout,
	}
}

// Unlocked reports whether the session currently holds decrypted state.
func (s *Session) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// Unlock brings the session into the unlocked state and returns a snapshot
// of the record.
//
// If the session is already unlocked it re-arms the relock timer and returns
// the cached record without any I/O or prompting. If the vault file does not
// exist, a new vault is initialized with a freshly prompted password. If it
// exists, the cached password is used when available, otherwise the user is
// prompted. An empty password from the prompt fails with common.ErrCancelled
// and the session stays locked. A decryption failure clears any cached
// password, so the next Unlock re-prompts instead of looping on a known-bad
// password. Errors are never retried here.
func (s *Session) Unlock(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlockLocked(ctx)
}

func (s *Session) unlockLocked(ctx context.Context) (Record, error) {
	if s.unlocked {
		s.armTimerLocked()
		return s.record.Clone(), nil
	}

	exists, err := s.store.Exists()
	if err != nil {
		return nil, err
	}

	if !exists {
		return s.initializeLocked(ctx)
	}

	password := s.password
	prompted := false
	if password == nil {
		password, err = s.promptPassword("Enter vault password")
		if err != nil {
			return nil, err
		}
		prompted = true
	}

	record, err := s.store.Read(password)
	if err != nil {
		if errors.Is(err, common.ErrDecryption) {
			// Never retain a password after a failed decryption attempt.
			common.WipeByteArray(password)
			common.WipeByteArray(s.password)
			s.password = nil
			s.logger.Warn(ctx, "vault unlock failed", "path", s.store.Path())
		} else if prompted {
			// A freshly prompted password has no owner once unlock fails.
			common.WipeByteArray(password)
		}
		return nil, err
	}

	s.password = password
	s.record = record
	s.unlocked = true
	s.armTimerLocked()
	s.logger.Debug(ctx, "vault unlocked", "path", s.store.Path(), "items", len(record))
	return record.Clone(), nil
}

// initializeLocked creates a brand new vault file with a freshly prompted
// password and leaves the session unlocked on the empty record.
func (s *Session) initializeLocked(ctx context.Context) (Record, error) {
	password, err := s.promptPassword("Create a password for the new vault")
	if err != nil {
		return nil, err
	}

	record, err := s.store.Init(password)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}

	s.password = password
	s.record = record
	s.unlocked = true
	s.armTimerLocked()
	s.logger.Info(ctx, "vault initialized", "path", s.store.Path())
	s.notifier.Notify("Initialized new vault at " + s.store.Path())
	return record.Clone(), nil
}

func (s *Session) promptPassword(prompt string) ([]byte, error) {
	password, err := s.prompter.PromptPassword(prompt)
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, common.ErrCancelled
	}
	return password, nil
}

// GetItem returns the value stored under name and whether it is present.
// Absence and an empty string value are distinct. Unlocks first if needed;
// the access re-arms the relock timer.
func (s *Session) GetItem(ctx context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.unlockLocked(ctx)
	if err != nil {
		return "", false, err
	}
	value, ok := record[name]
	return value, ok, nil
}

// SetItem stores name -> value and persists the vault. The mutation happens
// on a copy of the cached record; snapshots handed out earlier never change.
func (s *Session) SetItem(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.unlockLocked(ctx); err != nil {
		return err
	}
	updated := s.record.Clone()
	updated[name] = value
	return s.saveLocked(ctx, updated)
}

// DeleteItem removes name from the vault and persists the change. Deleting
// an absent name still rewrites the file.
func (s *Session) DeleteItem(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.unlockLocked(ctx); err != nil {
		return err
	}
	updated := s.record.Clone()
	delete(updated, name)
	return s.saveLocked(ctx, updated)
}

// Items returns the sorted secret names. Unlocks first if needed.
func (s *Session) Items(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.unlockLocked(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(record))
	for name := range record {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Save encrypts and writes record with the cached password, then replaces
// the cached record with a copy of it. Fails with common.ErrLocked if the
// session is not unlocked; Save never prompts.
func (s *Session) Save(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, record)
}

func (s *Session) saveLocked(ctx context.Context, record Record) error {
	if !s.unlocked {
		return common.ErrLocked
	}
	if err := s.store.Write(s.password, record); err != nil {
		return err
	}
	s.record = record.Clone()
	s.armTimerLocked()
	s.logger.Debug(ctx, "vault saved", "path", s.store.Path(), "items", len(record))
	return nil
}

// Lock clears the cached password and record and cancels the relock timer.
// Idempotent; never fails.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockLocked()
}

func (s *Session) lockLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	common.WipeByteArray(s.password)
	s.password = nil
	s.record = nil
	s.unlocked = false
}

// armTimerLocked cancels any armed timer and starts a new one for the
// configured idle duration. The generation counter makes sure a timer that
// already fired but lost the race for the mutex cannot relock the session
// after it was re-armed.
func (s *Session) armTimerLocked() {
	if s.relock <= 0 {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.timer = time.AfterFunc(s.relock, func() {
		s.relockExpired(gen)
	})
}

func (s *Session) relockExpired(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || !s.unlocked {
		return
	}
	s.lockLocked()
	s.logger.Info(context.Background(), "vault relocked after inactivity", "path", s.store.Path())
	s.notifier.Notify("Vault locked after inactivity")
}
