package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/security"
	"github.com/rs/zerolog/log"
)

// Persisted keys
const (
	KeyAuthToken       = "auth_token"
	KeyAuthUser        = "auth_user"
	KeyRememberedEmail = "remembered_email"
	KeyRememberMe      = "remember_me"
)

const defaultOpTimeout = 2 * time.Second

// passphraseSalt is fixed so every process derives the same key
const passphraseSalt = "smart-assistant/storage/v1"

// Backend is a persistent key-value blob store. Implementations report
// failures; Store turns them into no-ops.
type Backend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Store is the best-effort adapter over a Backend. None of its methods
// return errors: failures are logged and treated as a missing key or a no-op.
type Store struct {
	backend   Backend
	encryptor *security.Encryptor
	timeout   time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithEncryptor seals every value before it reaches the backend
func WithEncryptor(e *security.Encryptor) Option {
	return func(s *Store) { s.encryptor = e }
}

// WithTimeout bounds each backend operation
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New creates a new store over backend
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, timeout: defaultOpTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open builds the backend selected by cfg.Driver and wraps it in a Store
func Open(cfg config.StorageConfig) (*Store, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Driver {
	case "", "memory":
		backend = NewMemoryBackend()
	case "sqlite":
		backend, err = NewSQLiteBackend(cfg.SQLite.Path)
	case "redis":
		backend, err = NewRedisBackend(cfg.Redis)
	case "postgres":
		backend, err = NewPostgresBackend(context.Background(), cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	var opts []Option
	enc, err := newEncryptor(cfg)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to create storage encryptor: %w", err)
	}
	if enc != nil {
		opts = append(opts, WithEncryptor(enc))
	}

	log.Debug().Str("driver", cfg.Driver).Bool("encrypted", enc != nil).Msg("storage opened")
	return New(backend, opts...), nil
}

func newEncryptor(cfg config.StorageConfig) (*security.Encryptor, error) {
	switch {
	case cfg.EncryptionKey != "":
		return security.NewEncryptorFromBase64(cfg.EncryptionKey)
	case cfg.Passphrase != "":
		return security.NewEncryptorFromPassphrase(cfg.Passphrase, []byte(passphraseSalt))
	default:
		return nil, nil
	}
}

// Get returns the value stored under key. Missing or unreadable keys yield ("", false).
func (s *Store) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, found, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read from storage")
		return "", false
	}
	if !found {
		return "", false
	}

	if s.encryptor != nil {
		plain, err := s.encryptor.DecryptString(value)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to decrypt stored value")
			return "", false
		}
		value = plain
	}
	return value, true
}

// Set stores value under key
func (s *Store) Set(key, value string) {
	if s.encryptor != nil {
		sealed, err := s.encryptor.EncryptString(value)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to encrypt value for storage")
			return
		}
		value = sealed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.backend.Set(ctx, key, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write to storage")
	}
}

// Remove deletes keys; missing keys are ignored
func (s *Store) Remove(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	for _, key := range keys {
		if err := s.backend.Remove(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to remove from storage")
		}
	}
}

// GetJSON decodes the JSON value under key into v and reports success
func (s *Store) GetJSON(key string, v any) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to decode stored JSON")
		return false
	}
	return true
}

// SetJSON encodes v as JSON and stores it under key
func (s *Store) SetJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to encode JSON for storage")
		return
	}
	s.Set(key, string(data))
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
