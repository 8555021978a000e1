package event

import (
	"context"
	"time"

	"anchor/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Create(ctx context.Context, tx *db.DB, event *core.Event) error {
	return tx.Update().Where("trace_id=?", event.TraceID).FirstOrCreate(event).Error
}

func (s *eventStore) List(ctx context.Context, offset time.Time, limit int) ([]*core.Event, error) {
	if limit <= 0 {
		limit = 500
	}

	var events []*core.Event
	if err := s.db.View().Where("created_at >= ?", offset).Order("created_at ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByUser(ctx context.Context, userID string, offset time.Time, limit int) ([]*core.Event, error) {
	if limit <= 0 {
		limit = 500
	}

	var events []*core.Event
	if err := s.db.View().Where("user_id = ? and created_at >= ?", userID, offset).Order("created_at ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
