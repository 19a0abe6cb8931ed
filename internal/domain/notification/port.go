package notification

import (
	"context"
	"time"

	"github.com/levigram/pushgate/internal/domain/subscription"
)

// Transport delivers one serialized payload to one endpoint. It reports the
// push service's status code and reserves the error return for failures
// that never reached the service (dial, timeout, encryption).
type Transport interface {
	Send(ctx context.Context, sub *subscription.Subscription, payload []byte) (status int, err error)
}

// BroadcastLog persists broadcast audit records. Writes are best-effort.
type BroadcastLog interface {
	Create(ctx context.Context, b *Broadcast) error
	ListRecent(ctx context.Context, limit int) ([]*Broadcast, error)
}

type Clock interface {
	Now() time.Time
}
