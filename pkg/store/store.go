// Package store keeps submitted blueprints under stable identifiers.
//
// Blueprints are stored as JSON records in any [cache.Cache] backend. Each
// new blueprint gets a random UUID; storing a blueprint whose content is
// already present returns the existing identifier instead of a new one.
package store

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/cache"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

// Record is a stored blueprint.
type Record struct {
	ID        string               `json:"id"`
	Digest    string               `json:"digest"`
	Blueprint *blueprint.Blueprint `json:"blueprint"`
	Warnings  []string             `json:"warnings,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// Option configures a Store.
type Option func(*Store)

// WithKeyer sets the key layout. The default is [cache.NewDefaultKeyer].
func WithKeyer(k cache.Keyer) Option { return func(s *Store) { s.keyer = k } }

// WithTTL sets how long records are kept. The default is [cache.TTLBlueprint].
func WithTTL(ttl time.Duration) Option { return func(s *Store) { s.ttl = ttl } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *Store) { s.logger = l } }

// Store saves and loads blueprint records.
type Store struct {
	backend cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

// New creates a store on top of backend. A nil backend selects an
// in-memory cache.
func New(backend cache.Cache, opts ...Option) *Store {
	if backend == nil {
		backend = cache.NewMemoryCache()
	}
	s := &Store{
		backend: cache.Instrument(backend),
		keyer:   cache.NewDefaultKeyer(),
		ttl:     cache.TTLBlueprint,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Digest returns the content digest of bp: the SHA-256 of its JSON form.
func Digest(bp *blueprint.Blueprint) (string, error) {
	data, err := json.Marshal(bp)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Put validates and stores bp. created is false when an identical
// blueprint was already stored and its record is returned.
func (s *Store) Put(ctx context.Context, bp *blueprint.Blueprint, warnings []string) (rec *Record, created bool, err error) {
	if err := bp.Validate(); err != nil {
		return nil, false, err
	}
	digest, err := Digest(bp)
	if err != nil {
		return nil, false, bperrors.Wrap(bperrors.ErrCodeInternal, err, "encode blueprint")
	}

	digestKey := s.keyer.DigestKey(digest)
	if id, hit, err := s.backend.Get(ctx, digestKey); err == nil && hit {
		if existing, err := s.Get(ctx, string(id)); err == nil {
			s.logger.Debug("blueprint already stored", "id", existing.ID)
			return existing, false, nil
		}
	}

	rec = &Record{
		ID:        s.newID(),
		Digest:    digest,
		Blueprint: bp,
		Warnings:  warnings,
		CreatedAt: s.now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, false, bperrors.Wrap(bperrors.ErrCodeInternal, err, "encode record")
	}
	if err := s.backend.Set(ctx, s.keyer.BlueprintKey(rec.ID), data, s.ttl); err != nil {
		return nil, false, bperrors.Wrap(bperrors.ErrCodeInternal, err, "store blueprint")
	}
	if err := s.backend.Set(ctx, digestKey, []byte(rec.ID), s.ttl); err != nil {
		s.logger.Warn("failed to index blueprint digest", "id", rec.ID, "err", err)
	}

	s.logger.Info("stored blueprint", "id", rec.ID, "segments", len(bp.Segments()))
	return rec, true, nil
}

// Get loads the record stored under id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if err := bperrors.ValidateBlueprintID(id); err != nil {
		return nil, err
	}
	data, hit, err := s.backend.Get(ctx, s.keyer.BlueprintKey(id))
	if err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeInternal, err, "load blueprint %s", id)
	}
	if !hit {
		return nil, bperrors.New(bperrors.ErrCodeBlueprintNotFound, "blueprint %s not found", id)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, bperrors.Wrap(bperrors.ErrCodeInternal, err, "decode blueprint %s", id)
	}
	return &rec, nil
}

// Delete removes the record stored under id. Deleting an unknown id
// reports BLUEPRINT_NOT_FOUND.
func (s *Store) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, s.keyer.BlueprintKey(id)); err != nil {
		return bperrors.Wrap(bperrors.ErrCodeInternal, err, "delete blueprint %s", id)
	}
	_ = s.backend.Delete(ctx, s.keyer.DigestKey(rec.Digest))
	s.logger.Info("deleted blueprint", "id", id)
	return nil
}

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }
