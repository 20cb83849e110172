// Package credentials stores the billing API key encrypted at rest and
// notifies subscribers whenever it changes.
package credentials

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/j-veylop/openai-cost-tui/internal/db"
	"github.com/j-veylop/openai-cost-tui/internal/logger"
)

// KeyName is the fixed name the API key is stored under.
const KeyName = "openai_api_key"

// ErrEmptyCredential is returned when storing a blank key.
var ErrEmptyCredential = errors.New("credential is empty")

// Backend persists sealed values by name.
type Backend interface {
	GetSecret(ctx context.Context, name string) ([]byte, error)
	PutSecret(ctx context.Context, name string, value []byte) error
	DeleteSecret(ctx context.Context, name string) (bool, error)
}

// Store is an encrypted single-key credential store.
type Store struct {
	mu          sync.Mutex
	backend     Backend
	aead        cipher.AEAD
	subscribers map[int]chan struct{}
	nextID      int
	closed      bool
}

// New opens a store whose values are sealed with the master key at keyPath.
// The key file is created with 0600 permissions if it does not exist.
func New(backend Backend, keyPath string) (*Store, error) {
	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	return NewWithKey(backend, key)
}

// NewWithKey opens a store using a caller-supplied 32-byte key.
func NewWithKey(backend Backend, key []byte) (*Store, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	return &Store{
		backend:     backend,
		aead:        aead,
		subscribers: make(map[int]chan struct{}),
	}, nil
}

// Get returns the stored key. The bool is false when no key is stored.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	sealed, err := s.backend.GetSecret(ctx, KeyName)
	if errors.Is(err, db.ErrSecretNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	plain, err := s.open(sealed)
	if err != nil {
		return "", false, err
	}
	return string(plain), true, nil
}

// Set stores key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyCredential
	}

	sealed, err := s.seal([]byte(key))
	if err != nil {
		return err
	}

	if err := s.backend.PutSecret(ctx, KeyName, sealed); err != nil {
		return err
	}

	logger.Info("credential stored")
	s.notify()
	return nil
}

// Delete removes the stored key. Deleting an absent key is not a mutation
// and does not notify.
func (s *Store) Delete(ctx context.Context) error {
	deleted, err := s.backend.DeleteSecret(ctx, KeyName)
	if err != nil {
		return err
	}
	if deleted {
		logger.Info("credential deleted")
		s.notify()
	}
	return nil
}

// Subscribe returns a channel that receives one value per mutation and a
// cancel func that unsubscribes and closes the channel. Cancel is idempotent.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel. Later mutations notify nobody.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	return nil
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
			// A notification is already pending for this subscriber.
		}
	}
}

// seal encrypts plain and prepends the nonce. The key name is bound as
// additional data so a sealed value cannot be replayed under another name.
func (s *Store) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plain, []byte(KeyName)), nil
}

func (s *Store) open(sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns {
		return nil, errors.New("stored credential is too short")
	}
	plain, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], []byte(KeyName))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credential (master key changed?): %w", err)
	}
	return plain, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("master key %s has wrong size %d", path, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}

	// The key is written in full to a temp file and linked into place, so a
	// concurrent reader never sees a partial key. Link fails if another
	// process published first; that key wins.
	if err := publishKey(path, key); err != nil {
		if os.IsExist(err) {
			return loadOrCreateKey(path)
		}
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	logger.Info("created master key", "path", path)
	return key, nil
}

func publishKey(path string, key []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".master.key-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(key); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Link(tmp, path)
}

// Mask renders key with everything but a short prefix and suffix hidden.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("•", len(key))
	}
	return key[:3] + "…" + key[len(key)-4:]
}
