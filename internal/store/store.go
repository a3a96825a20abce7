// Package store persists the vent session's identity record and guest history.
//
// Every backend stores opaque blobs; Store layers the record encoding and the
// corruption contract on top: a record that cannot be decoded is deleted and
// reported as absent, never surfaced as an error.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-vent/internal/models"
	"github.com/AnshRaj112/serenify-vent/pkg/utils"
	"github.com/rs/zerolog"
)

const (
	// IdentityKey holds the signed-in user record
	IdentityKey = "user"
	// GuestHistoryKeyPrefix is followed by the session id
	GuestHistoryKeyPrefix = "vent_messages:"

	// IdentityTTL matches the backend's 7-day session lifetime
	IdentityTTL = 7 * 24 * time.Hour
	// GuestHistoryTTL bounds how long guest messages survive a session that never closed cleanly
	GuestHistoryTTL = 12 * time.Hour
)

var (
	ErrNotFound = errors.New("not found")
	errCorrupt  = errors.New("corrupt record")
)

// Backend is raw key/value persistence with optional expiry.
// Get returns ErrNotFound for absent or expired keys. A zero ttl never expires.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SessionStore is what the vent controller needs from persistence.
type SessionStore interface {
	LoadIdentity(ctx context.Context) (*models.User, error)
	SaveIdentity(ctx context.Context, user *models.User) error
	ClearIdentity(ctx context.Context) error

	LoadGuestHistory(ctx context.Context) ([]models.Vent, error)
	SaveGuestHistory(ctx context.Context, vents []models.Vent) error
	ClearGuestHistory(ctx context.Context) error
}

// Store implements SessionStore over a Backend.
type Store struct {
	backend   Backend
	sessionID string
	key       []byte
	log       zerolog.Logger
}

type Option func(*Store)

// WithEncryptionKey seals every record with AES-256-GCM before it reaches the backend.
func WithEncryptionKey(key []byte) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a Store. sessionID scopes the guest history; two stores with
// the same backend and session id see the same guest messages.
func New(backend Backend, sessionID string, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		sessionID: sessionID,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionID returns the id that scopes the guest history.
func (s *Store) SessionID() string {
	return s.sessionID
}

func (s *Store) guestHistoryKey() string {
	return GuestHistoryKeyPrefix + s.sessionID
}

// LoadIdentity returns the stored user, or nil when there is none.
// A malformed record is cleared and treated as absent.
func (s *Store) LoadIdentity(ctx context.Context) (*models.User, error) {
	raw, err := s.load(ctx, IdentityKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user, err := decodeIdentity(raw)
	if err != nil {
		s.discard(ctx, IdentityKey, err)
		return nil, nil
	}
	return user, nil
}

func (s *Store) SaveIdentity(ctx context.Context, user *models.User) error {
	if !user.Valid() {
		return fmt.Errorf("save identity: %w", errCorrupt)
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return s.save(ctx, IdentityKey, data, IdentityTTL)
}

func (s *Store) ClearIdentity(ctx context.Context) error {
	if err := s.backend.Delete(ctx, IdentityKey); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// LoadGuestHistory returns the guest vents of this session, oldest first.
// Corrupt content yields an empty history.
func (s *Store) LoadGuestHistory(ctx context.Context) ([]models.Vent, error) {
	key := s.guestHistoryKey()
	raw, err := s.load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []models.Vent{}, nil
	}
	if err != nil {
		return nil, err
	}

	vents, err := decodeHistory(raw)
	if err != nil {
		s.discard(ctx, key, err)
		return []models.Vent{}, nil
	}
	return vents, nil
}

func (s *Store) SaveGuestHistory(ctx context.Context, vents []models.Vent) error {
	if vents == nil {
		vents = []models.Vent{}
	}
	data, err := json.Marshal(vents)
	if err != nil {
		return fmt.Errorf("save guest history: %w", err)
	}
	return s.save(ctx, s.guestHistoryKey(), data, GuestHistoryTTL)
}

func (s *Store) ClearGuestHistory(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.guestHistoryKey()); err != nil {
		return fmt.Errorf("clear guest history: %w", err)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if s.key == nil {
		return raw, nil
	}
	plain, err := utils.Decrypt(s.key, raw)
	if err != nil {
		// Sealed with another key or tampered with: same as unreadable
		s.discard(ctx, key, err)
		return nil, ErrNotFound
	}
	return plain, nil
}

func (s *Store) save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if s.key != nil {
		sealed, err := utils.Encrypt(s.key, data)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", key, err)
		}
		data = sealed
	}
	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *Store) discard(ctx context.Context, key string, cause error) {
	s.log.Warn().Err(cause).Str("key", key).Msg("discarding unreadable session record")
	if err := s.backend.Delete(ctx, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to delete unreadable session record")
	}
}

func decodeIdentity(raw []byte) (*models.User, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errCorrupt
	}
	var user models.User
	if err := json.Unmarshal(trimmed, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if !user.Valid() {
		return nil, errCorrupt
	}
	return &user, nil
}

func decodeHistory(raw []byte) ([]models.Vent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errCorrupt
	}
	var vents []models.Vent
	if err := json.Unmarshal(trimmed, &vents); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if vents == nil {
		vents = []models.Vent{}
	}
	return vents, nil
}
