// Package cards is a keyed SQL alternative to the single-object collection
// store. It honours the same Load/Save/Upsert/RemoveByID contract, but every
// mutation runs in one database transaction and touches only its own row, so
// concurrent writers to a collection no longer overwrite each other.
package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/qsl-cards-backend/internal/data/collection"
	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/pkg/dbctx"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

type Store struct {
	db       *gorm.DB
	log      *logger.Logger
	backend  string
	now      func() time.Time
	newID    func() string
	observer collection.Observer
}

func NewStore(db *gorm.DB, baseLog *logger.Logger, backend string, observer collection.Observer) *Store {
	return &Store{
		db:       db,
		log:      baseLog.With("repo", "CardStore", "backend", backend),
		backend:  backend,
		now:      time.Now,
		newID:    uuid.NewString,
		observer: observer,
	}
}

func (s *Store) Load(ctx context.Context, key string) (out []types.Card, err error) {
	defer s.observe("load", time.Now(), &err)

	out, err = s.load(dbctx.Context{Ctx: ctx}, key)
	if err != nil {
		return nil, s.accessError(objstore.OpRead, key, err)
	}
	return out, nil
}

func (s *Store) load(dbc dbctx.Context, key string) ([]types.Card, error) {
	var rows []types.CardRow
	if err := dbc.DB(s.db).
		Where("collection_key = ?", key).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.Card, 0, len(rows))
	for _, row := range rows {
		var c types.Card
		if err := json.Unmarshal(row.Payload, &c); err != nil {
			return nil, fmt.Errorf("decode card %q: %w", row.ID, err)
		}
		c.ID = row.ID
		out = append(out, c)
	}
	return out, nil
}

// Save replaces every row of the collection in one transaction.
func (s *Store) Save(ctx context.Context, key string, list []types.Card) (err error) {
	defer s.observe("save", time.Now(), &err)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := dbc.DB(s.db).Where("collection_key = ?", key).Delete(&types.CardRow{}).Error; err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		rows := make([]types.CardRow, 0, len(list))
		for i, c := range list {
			row, err := s.toRow(key, int64(i), c)
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return dbc.DB(s.db).Create(&rows).Error
	})
	if err != nil {
		return s.accessError(objstore.OpWrite, key, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, key string, card types.Card) (out types.Card, err error) {
	defer s.observe("upsert", time.Now(), &err)

	now := s.now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		var existing []types.CardRow
		if card.ID != "" {
			if err := dbc.DB(s.db).
				Where("collection_key = ? AND id = ?", key, card.ID).
				Limit(1).
				Find(&existing).Error; err != nil {
				return err
			}
		}

		if len(existing) == 1 {
			var prev types.Card
			if err := json.Unmarshal(existing[0].Payload, &prev); err != nil {
				return fmt.Errorf("decode card %q: %w", card.ID, err)
			}
			card.CreatedAt = prev.CreatedAt
			if card.CreatedAt.IsZero() {
				card.CreatedAt = now
			}
			card.UpdatedAt = now
			row, err := s.toRow(key, existing[0].Position, card)
			if err != nil {
				return err
			}
			return dbc.DB(s.db).Model(&types.CardRow{}).
				Where("collection_key = ? AND id = ?", key, card.ID).
				Updates(map[string]interface{}{"payload": row.Payload, "updated_at": now}).Error
		}

		var maxPos int64
		if err := dbc.DB(s.db).Model(&types.CardRow{}).
			Where("collection_key = ?", key).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		card.ID = s.newID()
		card.CreatedAt = now
		card.UpdatedAt = now
		row, err := s.toRow(key, maxPos+1, card)
		if err != nil {
			return err
		}
		return dbc.DB(s.db).Create(&row).Error
	})
	if err != nil {
		return types.Card{}, s.accessError(objstore.OpWrite, key, err)
	}
	return card, nil
}

func (s *Store) RemoveByID(ctx context.Context, key, id string) (err error) {
	defer s.observe("remove", time.Now(), &err)

	if id == "" {
		return types.ErrIDRequired
	}
	res := dbctx.Context{Ctx: ctx}.DB(s.db).
		Where("collection_key = ? AND id = ?", key, id).
		Delete(&types.CardRow{})
	if res.Error != nil {
		return s.accessError(objstore.OpWrite, key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", types.ErrCardNotFound, id)
	}
	return nil
}

func (s *Store) toRow(key string, pos int64, c types.Card) (types.CardRow, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return types.CardRow{}, fmt.Errorf("encode card %q: %w", c.ID, err)
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = s.now().UTC()
	}
	return types.CardRow{
		CollectionKey: key,
		ID:            c.ID,
		Position:      pos,
		Payload:       payload,
		UpdatedAt:     updated,
	}, nil
}

func (s *Store) accessError(op objstore.Op, key string, err error) error {
	kind := objstore.AccessErrorUnknown
	if errors.Is(err, context.DeadlineExceeded) {
		kind = objstore.AccessErrorEndpoint
	}
	return objstore.AsAccessError(s.backend, op, key, kind, err)
}

func (s *Store) observe(op string, start time.Time, errp *error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveStoreOp(s.backend, op, collection.Outcome(*errp), time.Since(start))
}
