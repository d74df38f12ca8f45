// Package cards holds the card use cases: validation, collection access by
// role, and the aggregate views.
package cards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
)

// CollectionStore is satisfied by both the blob-backed collection.Store and
// the keyed SQL store.
type CollectionStore interface {
	Load(ctx context.Context, key string) ([]types.Card, error)
	Save(ctx context.Context, key string, list []types.Card) error
	Upsert(ctx context.Context, key string, card types.Card) (types.Card, error)
	RemoveByID(ctx context.Context, key, id string) error
}

// Keys are the storage keys of the two collections.
type Keys struct {
	Sent     string
	Received string
}

func (k Keys) For(role types.Role) string {
	if role == types.RoleReceived {
		return k.Received
	}
	return k.Sent
}

type Pong struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type Service interface {
	Ping(ctx context.Context) Pong
	List(ctx context.Context, role types.Role) ([]types.Card, error)
	Save(ctx context.Context, role types.Role, card types.Card) (types.Card, error)
	Delete(ctx context.Context, role types.Role, id string) error
	Import(ctx context.Context, role types.Role, raw []byte) ([]types.Card, error)
	Stats(ctx context.Context) (Stats, error)
	Chart(ctx context.Context) (Chart, error)
}

type service struct {
	log   *logger.Logger
	store CollectionStore
	keys  Keys
	agg   *Aggregator
	now   func() time.Time
	newID func() string
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithGrowthSource(g GrowthSource) Option {
	return func(s *service) { s.agg.growth = g }
}

func NewService(baseLog *logger.Logger, store CollectionStore, keys Keys, opts ...Option) Service {
	s := &service{
		log:   baseLog.With("service", "CardService"),
		store: store,
		keys:  keys,
		now:   time.Now,
		newID: uuid.NewString,
	}
	s.agg = NewAggregator(nil, func() time.Time { return s.now() })
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Ping(ctx context.Context) Pong {
	return Pong{Message: "pong", Time: s.now().UTC()}
}

func (s *service) List(ctx context.Context, role types.Role) ([]types.Card, error) {
	out, err := s.store.Load(ctx, s.keys.For(role))
	if err != nil {
		return nil, fmt.Errorf("load %s cards: %w", role, err)
	}
	return out, nil
}

func (s *service) Save(ctx context.Context, role types.Role, card types.Card) (types.Card, error) {
	if err := Validate(role, card); err != nil {
		return types.Card{}, err
	}
	out, err := s.store.Upsert(ctx, s.keys.For(role), card)
	if err != nil {
		return types.Card{}, fmt.Errorf("save %s card: %w", role, err)
	}
	s.log.Debug("card saved", "role", role, "id", out.ID)
	return out, nil
}

func (s *service) Delete(ctx context.Context, role types.Role, id string) error {
	if err := s.store.RemoveByID(ctx, s.keys.For(role), id); err != nil {
		return fmt.Errorf("delete %s card: %w", role, err)
	}
	s.log.Debug("card deleted", "role", role, "id", id)
	return nil
}

// Import replaces a whole collection with raw, which must be a JSON array of
// valid cards. Nothing is written unless every card passes.
func (s *service) Import(ctx context.Context, role types.Role, raw []byte) ([]types.Card, error) {
	list, err := types.DecodeCollection(raw)
	if err != nil {
		return nil, err
	}

	var problems []string
	seen := make(map[string]struct{}, len(list))
	now := s.now().UTC()
	for i := range list {
		var verr *types.ValidationError
		if errors.As(Validate(role, list[i]), &verr) {
			problems = append(problems, fmt.Sprintf("card %d: %s", i, strings.Join(verr.Problems, ", ")))
			continue
		}
		if list[i].ID == "" {
			list[i].ID = s.newID()
		}
		if _, dup := seen[list[i].ID]; dup {
			problems = append(problems, fmt.Sprintf("card %d: duplicate id %s", i, list[i].ID))
			continue
		}
		seen[list[i].ID] = struct{}{}
		if list[i].CreatedAt.IsZero() {
			list[i].CreatedAt = now
		}
		if list[i].UpdatedAt.IsZero() {
			list[i].UpdatedAt = now
		}
	}
	if len(problems) > 0 {
		return nil, &types.ValidationError{Problems: problems}
	}

	if err := s.store.Save(ctx, s.keys.For(role), list); err != nil {
		return nil, fmt.Errorf("import %s cards: %w", role, err)
	}
	s.log.Info("collection imported", "role", role, "count", len(list))
	return list, nil
}

func (s *service) load(ctx context.Context) (sent, received []types.Card, err error) {
	if sent, err = s.List(ctx, types.RoleSent); err != nil {
		return nil, nil, err
	}
	if received, err = s.List(ctx, types.RoleReceived); err != nil {
		return nil, nil, err
	}
	return sent, received, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	sent, received, err := s.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return s.agg.Stats(sent, received), nil
}

func (s *service) Chart(ctx context.Context) (Chart, error) {
	sent, received, err := s.load(ctx)
	if err != nil {
		return Chart{}, err
	}
	return s.agg.Chart(sent, received), nil
}
