package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// maxRetiredKeys bounds how many purged key ids are remembered.
const maxRetiredKeys = 1024

// KeyManager owns the live token keys: the current key used for new tokens and,
// after a rotation, the previous key that keeps decrypting until its grace
// period elapses.
//
// At most two keys are live. Rotate demotes current to previous and destroys
// whatever previous held before. The previous key is treated as absent by
// KeyFor as soon as the grace period is over, and is zeroed on the next Rotate
// or Sweep.
//
// Thread safety: Rotate, Sweep and Close are serialized by a write lock. Reads
// (CurrentKey, KeyFor, State) share a read lock and always observe either the
// state before a rotation or the state after it.
//
// Keys returned by CurrentKey and KeyFor are clones owned by the caller, so a
// concurrent purge never zeroes bytes that an encryption is still using.
//
// The ids of purged keys are remembered (up to maxRetiredKeys) so KeyFor can
// tell a retired id (ErrKeyNotFound) from one this manager never issued
// (ErrUnknownKey).
type KeyManager struct {
	mu        sync.RWMutex
	config    cryptoDomain.KeyRotationConfig
	current   *cryptoDomain.KeyMaterial
	previous  *cryptoDomain.KeyMaterial
	rotatedAt time.Time
	closed    bool

	retired      map[string]struct{}
	retiredOrder []string

	now    func() time.Time
	random io.Reader
	logger *slog.Logger
}

// KeyManagerOption configures a KeyManager.
type KeyManagerOption func(*KeyManager)

// WithClock overrides the time source used for key creation and grace checks.
func WithClock(now func() time.Time) KeyManagerOption {
	return func(km *KeyManager) {
		km.now = now
	}
}

// WithRandReader overrides the entropy source for key bytes.
func WithRandReader(r io.Reader) KeyManagerOption {
	return func(km *KeyManager) {
		km.random = r
	}
}

// WithLogger sets the logger used for rotation and purge events.
func WithLogger(logger *slog.Logger) KeyManagerOption {
	return func(km *KeyManager) {
		km.logger = logger
	}
}

// NewKeyManager validates cfg and creates a key manager holding one fresh current key.
func NewKeyManager(cfg cryptoDomain.KeyRotationConfig, opts ...KeyManagerOption) (*KeyManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	km := &KeyManager{
		config:  cfg,
		retired: make(map[string]struct{}),
		now:    time.Now,
		random: rand.Reader,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(km)
	}

	key, err := km.newKey(time.Time{})
	if err != nil {
		return nil, err
	}
	km.current = key

	return km, nil
}

// Algorithm returns the AEAD algorithm new tokens are sealed with.
func (km *KeyManager) Algorithm() cryptoDomain.Algorithm {
	return km.config.Algorithm
}

// GracePeriod returns the configured grace period.
func (km *KeyManager) GracePeriod() time.Duration {
	return km.config.GracePeriod
}

// CurrentKey returns a clone of the active key for new encryptions.
func (km *KeyManager) CurrentKey() (*cryptoDomain.KeyMaterial, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.closed {
		return nil, cryptoDomain.ErrKeyManagerClosed
	}
	return km.current.Clone(), nil
}

// KeyFor returns a clone of the key matching kid.
//
// The current key always matches. The previous key matches only while its
// grace period has not elapsed. A previous key past its grace period or an
// already purged key returns ErrKeyNotFound; an id this manager never issued
// returns ErrUnknownKey, which also satisfies errors.Is(err, ErrKeyNotFound).
func (km *KeyManager) KeyFor(kid string) (*cryptoDomain.KeyMaterial, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.closed {
		return nil, cryptoDomain.ErrKeyManagerClosed
	}
	if km.current.ID == kid {
		return km.current.Clone(), nil
	}
	if km.previous != nil && km.previous.ID == kid {
		if km.graceExpired(km.now()) {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return km.previous.Clone(), nil
	}
	if _, ok := km.retired[kid]; ok {
		return nil, cryptoDomain.ErrKeyNotFound
	}
	return nil, cryptoDomain.ErrUnknownKey
}

// Rotate generates a new current key and demotes the old one to previous.
// Any older previous key is destroyed. The grace period starts now.
func (km *KeyManager) Rotate() error {
	km.mu.Lock()
	defer km.mu.Unlock()

	if km.closed {
		return cryptoDomain.ErrKeyManagerClosed
	}

	now := km.now()
	key, err := km.newKey(km.current.CreatedAt)
	if err != nil {
		return err
	}

	if km.previous != nil {
		km.purgePrevious()
	}
	km.previous = km.current
	km.current = key
	km.rotatedAt = now

	km.logger.Info("token key rotated",
		slog.String("kid", km.current.ID),
		slog.String("previous_kid", km.previous.ID),
		slog.Duration("grace_period", km.config.GracePeriod),
	)
	return nil
}

// IsGraceExpired reports whether the previous key's grace period is over at now,
// that is now - rotationTime > gracePeriod. It returns false before the first
// rotation.
func (km *KeyManager) IsGraceExpired(now time.Time) bool {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.graceExpired(now)
}

// Sweep destroys the previous key if its grace period is over and reports
// whether a key was purged.
func (km *KeyManager) Sweep() bool {
	km.mu.Lock()
	defer km.mu.Unlock()

	if km.previous == nil || !km.graceExpired(km.now()) {
		return false
	}

	km.purgePrevious()
	km.previous = nil
	return true
}

// State returns the ids of the live keys and the last rotation time.
func (km *KeyManager) State() cryptoDomain.KeyState {
	km.mu.RLock()
	defer km.mu.RUnlock()

	state := cryptoDomain.KeyState{RotatedAt: km.rotatedAt}
	if km.current != nil {
		state.CurrentID = km.current.ID
	}
	if km.previous != nil {
		state.PreviousID = km.previous.ID
	}
	return state
}

// Run rotates the current key every interval and sweeps the previous key once
// its grace period is over, until ctx is done. A zero interval disables
// automatic rotation but keeps sweeping.
func (km *KeyManager) Run(ctx context.Context, interval time.Duration) error {
	sweepEvery := km.config.GracePeriod
	if sweepEvery <= 0 {
		sweepEvery = time.Second
	}
	sweepTicker := time.NewTicker(sweepEvery)
	defer sweepTicker.Stop()

	var rotateC <-chan time.Time
	if interval > 0 {
		rotateTicker := time.NewTicker(interval)
		defer rotateTicker.Stop()
		rotateC = rotateTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rotateC:
			if err := km.Rotate(); err != nil {
				return fmt.Errorf("failed to rotate token key: %w", err)
			}
		case <-sweepTicker.C:
			km.Sweep()
		}
	}
}

// Close destroys every live key. Subsequent calls return ErrKeyManagerClosed.
func (km *KeyManager) Close() {
	km.mu.Lock()
	defer km.mu.Unlock()

	km.current.Destroy()
	km.previous.Destroy()
	km.previous = nil
	km.closed = true
}

// purgePrevious zeroes the previous key and remembers its id as retired.
func (km *KeyManager) purgePrevious() {
	id := km.previous.ID
	km.logger.Debug("purging previous token key", slog.String("kid", id))
	km.previous.Destroy()

	if len(km.retiredOrder) == maxRetiredKeys {
		delete(km.retired, km.retiredOrder[0])
		km.retiredOrder = km.retiredOrder[1:]
	}
	km.retired[id] = struct{}{}
	km.retiredOrder = append(km.retiredOrder, id)
}

func (km *KeyManager) graceExpired(now time.Time) bool {
	if km.rotatedAt.IsZero() {
		return false
	}
	return now.Sub(km.rotatedAt) > km.config.GracePeriod
}

// newKey creates a key whose CreatedAt is strictly after notBefore. The key id
// is a UUIDv7 carrying CreatedAt in its millisecond timestamp.
func (km *KeyManager) newKey(notBefore time.Time) (*cryptoDomain.KeyMaterial, error) {
	createdAt := km.now()
	if !createdAt.After(notBefore) {
		createdAt = notBefore.Add(time.Nanosecond)
	}

	id, err := newKeyID(createdAt, km.random)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key id: %w", err)
	}

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(km.random, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	return &cryptoDomain.KeyMaterial{ID: id, Key: key, CreatedAt: createdAt}, nil
}

// newKeyID builds a UUIDv7 whose unix_ts_ms field is createdAt rather than the
// wall clock, so an injected clock is reflected in the id.
func newKeyID(createdAt time.Time, random io.Reader) (string, error) {
	id, err := uuid.NewV7FromReader(random)
	if err != nil {
		return "", err
	}
	ms := uint64(createdAt.UnixMilli())
	for i := range 6 {
		id[i] = byte(ms >> (40 - 8*i))
	}
	return id.String(), nil
}
