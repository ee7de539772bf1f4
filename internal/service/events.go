package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carproban-backend/internal/apperr"
	"carproban-backend/internal/ws"
	"carproban-backend/pkg/cache"
)

const initialDataCacheKeyPrefix = "carproban:initial-data:"

// Events fans a mutation out to the two read-model channels: the websocket
// hub (push) and the redis cache (invalidation of the hydration payload for
// the affected outlets plus the global view).
type Events struct {
	Hub   *ws.Hub
	Cache *cache.Cache
}

func (e *Events) Publish(event string, data interface{}, outletIDs ...uuid.UUID) {
	if e == nil {
		return
	}
	ctx := context.Background()
	if len(outletIDs) == 0 {
		// No outlet scope means the mutation is global (master data), which
		// every cached snapshot contains. Drop them all, not just "all".
		e.Cache.DeleteByPrefix(ctx, initialDataCacheKeyPrefix)
	} else {
		keys := []string{initialDataCacheKeyPrefix + "all"}
		for _, id := range outletIDs {
			keys = append(keys, initialDataCacheKeyPrefix+id.String())
		}
		e.Cache.Delete(ctx, keys...)
	}

	go e.Hub.Publish(event, data)
}

// retryOnDuplicate reruns op while it fails on a unique-index collision.
// Document numbers are serialized by the counter row lock, so a collision is
// only possible when two first-of-year inserts race; the rerun regenerates
// the number. Exhausting the budget surfaces as a conflict, never a silent
// overwrite.
func retryOnDuplicate(op func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = op()
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return apperr.Conflict("document number collision persisted after retries")
}
