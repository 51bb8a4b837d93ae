package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/bookvote/internal/domain"
)

// Wiper empties the selected database. Used by reset only.
type Wiper struct {
	rdb goredis.Cmdable
}

var _ domain.StoreWiper = (*Wiper)(nil)

func NewWiper(rdb goredis.Cmdable) *Wiper {
	return &Wiper{rdb: rdb}
}

func (w *Wiper) Wipe(ctx context.Context) error {
	return storeError("flushdb", w.rdb.FlushDB(ctx).Err())
}
