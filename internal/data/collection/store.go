// Package collection stores a card collection as a single JSON array object
// and applies every change as a full read-modify-write of that object.
//
// Writers are not serialized. Two concurrent Upsert/RemoveByID calls against
// the same key can both read the same snapshot, and the later Put silently
// discards the earlier change. Callers needing more than last-write-wins must
// funnel writes for a key through one writer, or use the keyed SQL store.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

// Observer receives one call per store operation.
type Observer interface {
	ObserveStoreOp(backend, op, outcome string, d time.Duration)
}

type Store struct {
	log      *logger.Logger
	objects  objstore.ObjectStore
	backend  string
	now      func() time.Time
	newID    func() string
	observer Observer
	tracer   trace.Tracer
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

func New(log *logger.Logger, objects objstore.ObjectStore, backend string, opts ...Option) *Store {
	s := &Store{
		log:     log.With("service", "CollectionStore", "backend", backend),
		objects: objects,
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
		tracer:  otel.Tracer("github.com/yungbote/qsl-cards-backend/internal/data/collection"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the whole collection. A collection that was never written, or
// whose object is blank, is empty rather than an error.
func (s *Store) Load(ctx context.Context, key string) (out []cards.Card, err error) {
	ctx, done := s.begin(ctx, "load", key)
	defer func() { done(err) }()
	return s.load(ctx, key)
}

func (s *Store) load(ctx context.Context, key string) ([]cards.Card, error) {
	data, err := s.objects.Get(ctx, key)
	if errors.Is(err, objstore.ErrNotFound) {
		return []cards.Card{}, nil
	}
	if err != nil {
		return nil, objstore.AsAccessError(s.backend, objstore.OpRead, key, objstore.AccessErrorUnknown, err)
	}
	list, err := cards.DecodeCollection(data)
	if err != nil {
		// A stored object that is not an array is a read failure, not bad input.
		return nil, &objstore.AccessError{
			Kind:    objstore.AccessErrorUnknown,
			Op:      objstore.OpRead,
			Backend: s.backend,
			Key:     key,
			Err:     err,
		}
	}
	return list, nil
}

// Save overwrites the collection unconditionally.
func (s *Store) Save(ctx context.Context, key string, list []cards.Card) (err error) {
	ctx, done := s.begin(ctx, "save", key)
	defer func() { done(err) }()
	return s.save(ctx, key, list)
}

func (s *Store) save(ctx context.Context, key string, list []cards.Card) error {
	if list == nil {
		list = []cards.Card{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode collection %q: %w", key, err)
	}
	if err := s.objects.Put(ctx, key, data); err != nil {
		return objstore.AsAccessError(s.backend, objstore.OpWrite, key, objstore.AccessErrorUnknown, err)
	}
	return nil
}

// SaveRaw replaces the collection with caller-provided JSON. Input that is
// not an array fails with cards.ErrNotSequence before storage is touched.
func (s *Store) SaveRaw(ctx context.Context, key string, raw []byte) (err error) {
	ctx, done := s.begin(ctx, "save_raw", key)
	defer func() { done(err) }()

	list, err := cards.DecodeCollection(raw)
	if err != nil {
		if errors.Is(err, cards.ErrNotSequence) {
			return err
		}
		return fmt.Errorf("%w: %v", cards.ErrNotSequence, err)
	}
	return s.save(ctx, key, list)
}

// Upsert replaces the card with the same id in place, or appends it under a
// freshly assigned id. createdAt is kept from the stored record on update.
func (s *Store) Upsert(ctx context.Context, key string, card cards.Card) (out cards.Card, err error) {
	ctx, done := s.begin(ctx, "upsert", key)
	defer func() { done(err) }()

	list, err := s.load(ctx, key)
	if err != nil {
		return cards.Card{}, err
	}

	now := s.now().UTC()
	idx := indexOf(list, card.ID)
	if idx >= 0 {
		card.CreatedAt = list[idx].CreatedAt
		if card.CreatedAt.IsZero() {
			card.CreatedAt = now
		}
		card.UpdatedAt = now
		list[idx] = card
	} else {
		card.ID = s.uniqueID(list)
		card.CreatedAt = now
		card.UpdatedAt = now
		list = append(list, card)
	}

	if err := s.save(ctx, key, list); err != nil {
		return cards.Card{}, err
	}
	s.log.Debug("Card stored", "key", key, "id", card.ID, "updated", idx >= 0)
	return card, nil
}

// RemoveByID deletes one card. Nothing is written when the id is absent.
func (s *Store) RemoveByID(ctx context.Context, key, id string) (err error) {
	ctx, done := s.begin(ctx, "remove", key)
	defer func() { done(err) }()

	if id == "" {
		return cards.ErrIDRequired
	}
	list, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	kept := make([]cards.Card, 0, len(list))
	for _, c := range list {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("%w: %s", cards.ErrCardNotFound, id)
	}
	return s.save(ctx, key, kept)
}

func (s *Store) uniqueID(list []cards.Card) string {
	for {
		id := s.newID()
		if id != "" && indexOf(list, id) < 0 {
			return id
		}
	}
}

func indexOf(list []cards.Card, id string) int {
	if id == "" {
		return -1
	}
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) begin(ctx context.Context, op, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "collection."+op, trace.WithAttributes(
		attribute.String("collection.backend", s.backend),
		attribute.String("collection.key", key),
	))
	return ctx, func(err error) {
		outcome := Outcome(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, outcome)
		}
		span.End()
		if s.observer != nil {
			s.observer.ObserveStoreOp(s.backend, op, outcome, time.Since(start))
		}
	}
}

// Outcome is the metric label for an operation result.
func Outcome(err error) string {
	var ae *objstore.AccessError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cards.ErrCardNotFound):
		return "not_found"
	case errors.Is(err, cards.ErrIDRequired), errors.Is(err, cards.ErrNotSequence):
		return "invalid"
	case errors.As(err, &ae):
		return string(ae.Kind)
	default:
		return "error"
	}
}
