package draft

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, id string) (Draft, error)
	Put(ctx context.Context, d Draft) error
	Delete(ctx context.Context, id string) error
	// DeleteIdle removes drafts not updated since before and reports how
	// many went.
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}
